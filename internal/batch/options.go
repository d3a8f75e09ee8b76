package batch

import (
	"runtime"

	"github.com/aristath/imgbatch/internal/imageops"
)

// Options configures one run.
type Options struct {
	Destination     string             // Output directory (single file: directory or file path)
	Operation       imageops.Operation // Transform applied to every image
	NameExpr        string             // Optional naming expression, see pathing.Resolve
	Format          string             // Optional target format
	Overwrite       bool               // Replace existing outputs without asking
	AbortOnError    bool               // Stop after decode if any image failed to decode
	FailOnTaskError bool               // Return a BatchError if any image failed at all
	Workers         int                // Worker pool size (default runtime.NumCPU())
	JPEGQuality     int
	SaveRetry       RetryConfig

	// BreakerThreshold trips saves to a directory after this many
	// consecutive failures. Zero disables it.
	BreakerThreshold int
}

// DefaultOptions returns options with the documented defaults.
func DefaultOptions() Options {
	return Options{
		Destination:      ".",
		Operation:        imageops.Operation{Kind: imageops.KindConvert},
		Workers:          runtime.NumCPU(),
		JPEGQuality:      imageops.DefaultJPEGQuality,
		SaveRetry:        DefaultRetryConfig(),
		BreakerThreshold: 5,
	}
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

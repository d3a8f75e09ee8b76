package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrDestinationUnavailable is returned for saves skipped because too
// many consecutive saves to the same directory failed.
var ErrDestinationUnavailable = errors.New("output destination unavailable")

// RetryConfig configures exponential backoff for transient save errors.
type RetryConfig struct {
	InitialInterval     time.Duration // Initial retry interval (default 50ms)
	MaxInterval         time.Duration // Maximum retry interval (default 1s)
	MaxElapsedTime      time.Duration // Give up after this long (default 5s)
	Multiplier          float64       // Backoff multiplier (default 2.0)
	RandomizationFactor float64       // Jitter factor (default 0.5)
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval:     50 * time.Millisecond,
		MaxInterval:         time.Second,
		MaxElapsedTime:      5 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.5,
	}
}

// BreakerRegistry hands out one circuit breaker per output directory.
// A threshold of zero disables breaking.
type BreakerRegistry struct {
	mu        sync.Mutex
	breakers  map[string]*gobreaker.CircuitBreaker
	threshold uint32
	log       zerolog.Logger
}

// NewBreakerRegistry creates a registry whose breakers trip after
// threshold consecutive failures.
func NewBreakerRegistry(threshold int, logger zerolog.Logger) *BreakerRegistry {
	if threshold < 0 {
		threshold = 0
	}
	return &BreakerRegistry{
		breakers:  make(map[string]*gobreaker.CircuitBreaker),
		threshold: uint32(threshold),
		log:       logger,
	}
}

// Get returns the breaker for dir, or nil when breaking is disabled.
func (r *BreakerRegistry) Get(dir string) *gobreaker.CircuitBreaker {
	if r == nil || r.threshold == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cb, ok := r.breakers[dir]; ok {
		return cb
	}

	threshold := r.threshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        dir,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return !isDestinationFailure(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			r.log.Warn().Str("destination", name).Str("from", from.String()).Str("to", to.String()).Msg("save circuit breaker changed state")
		},
	})
	r.breakers[dir] = cb
	return cb
}

// isDestinationFailure reports whether err says the output directory
// itself is unusable. Errors tied to a single file, such as an
// unsupported format or a failed encode, do not count against the
// directory's breaker.
func isDestinationFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, syscall.ENOSPC) ||
		errors.Is(err, syscall.EROFS) ||
		errors.Is(err, syscall.EDQUOT) ||
		errors.Is(err, syscall.EIO)
}

// isTransient reports whether a save error is worth retrying.
func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.ETXTBSY)
}

// saveWithRetry runs save, retrying transient errors with backoff and
// routing every attempt through cb when it is non-nil.
func saveWithRetry(ctx context.Context, save func() error, cb *gobreaker.CircuitBreaker, retryCfg RetryConfig) error {
	operation := func() error {
		var err error
		if cb != nil {
			_, err = cb.Execute(func() (interface{}, error) {
				return nil, save()
			})
		} else {
			err = save()
		}
		if err == nil {
			return nil
		}

		// Circuit is open - don't retry
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrDestinationUnavailable, err))
		}
		if !isTransient(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryCfg.InitialInterval
	policy.MaxInterval = retryCfg.MaxInterval
	policy.MaxElapsedTime = retryCfg.MaxElapsedTime
	policy.Multiplier = retryCfg.Multiplier
	policy.RandomizationFactor = retryCfg.RandomizationFactor

	return backoff.Retry(operation, backoff.WithContext(policy, ctx))
}

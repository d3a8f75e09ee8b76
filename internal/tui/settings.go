package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/aristath/imgbatch/internal/config"
	"github.com/aristath/imgbatch/internal/imageops"
)

// SettingsForm edits the persistent configuration and saves it to the
// global or project config file.
type SettingsForm struct {
	form        *huh.Form
	config      *config.Config
	globalPath  string
	projectPath string
	accessible  bool

	// Form field bindings (strings for Huh)
	saveTarget      string
	workers         string
	quality         string
	format          string
	filter          string
	logLevel        string
	historyDB       string
	overwrite       bool
	abortOnError    bool
	failOnTaskError bool
}

// NewSettingsForm creates a settings form seeded from cfg.
func NewSettingsForm(cfg *config.Config, globalPath, projectPath string, accessible bool) *SettingsForm {
	f := &SettingsForm{
		config:      cfg,
		globalPath:  globalPath,
		projectPath: projectPath,
		accessible:  accessible,

		saveTarget:      "project",
		workers:         strconv.Itoa(cfg.Workers),
		quality:         strconv.Itoa(cfg.JPEGQuality),
		format:          canonicalFormat(cfg.Format),
		filter:          cfg.Filter,
		logLevel:        cfg.LogLevel,
		historyDB:       cfg.HistoryDB,
		overwrite:       cfg.Overwrite,
		abortOnError:    cfg.AbortOnError,
		failOnTaskError: cfg.FailOnTaskError,
	}
	f.buildForm()
	return f
}

// canonicalFormat maps aliases such as "jpg" to the names offered in the form.
func canonicalFormat(name string) string {
	if f, err := imageops.LookupFormat(name); err == nil {
		return f.Name
	}
	return name
}

func validateInt(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

// buildForm constructs the Huh form with all settings fields.
func (f *SettingsForm) buildForm() {
	formats := []huh.Option[string]{huh.NewOption("keep source format", "")}
	for _, name := range imageops.EncodableFormats() {
		formats = append(formats, huh.NewOption(name, name))
	}

	var filters []huh.Option[string]
	for _, name := range imageops.FilterNames() {
		filters = append(filters, huh.NewOption(name, name))
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("saveTarget").
				Title("Save To").
				Options(
					huh.NewOption("Global ("+f.globalPath+")", "global"),
					huh.NewOption("Project ("+f.projectPath+")", "project"),
				).
				Value(&f.saveTarget),
		).Title("Save Target"),

		huh.NewGroup(
			huh.NewInput().
				Key("workers").
				Title("Workers").
				Description("0 uses one worker per CPU").
				Validate(validateInt(0, 1024)).
				Value(&f.workers),

			huh.NewConfirm().
				Key("overwrite").
				Title("Overwrite existing files without asking?").
				Value(&f.overwrite),

			huh.NewConfirm().
				Key("abortOnError").
				Title("Abort when an image cannot be read?").
				Value(&f.abortOnError),

			huh.NewConfirm().
				Key("failOnTaskError").
				Title("Exit with an error when any image fails?").
				Value(&f.failOnTaskError),
		).Title("Batch"),

		huh.NewGroup(
			huh.NewSelect[string]().
				Key("format").
				Title("Default Output Format").
				Options(formats...).
				Value(&f.format),

			huh.NewSelect[string]().
				Key("filter").
				Title("Resize Filter").
				Options(filters...).
				Value(&f.filter),

			huh.NewInput().
				Key("quality").
				Title("JPEG Quality").
				Validate(validateInt(1, 100)).
				Value(&f.quality),
		).Title("Output"),

		huh.NewGroup(
			huh.NewSelect[string]().
				Key("logLevel").
				Title("Log Level").
				Options(huh.NewOptions("debug", "info", "warn", "error")...).
				Value(&f.logLevel),

			huh.NewInput().
				Key("historyDB").
				Title("History Database").
				Description("Leave empty to disable the run journal").
				Value(&f.historyDB),
		).Title("Diagnostics"),
	).WithAccessible(f.accessible)
}

// Run shows the form and saves the result. It returns the path written.
func (f *SettingsForm) Run() (string, error) {
	if err := f.form.Run(); err != nil {
		return "", err
	}
	return f.save()
}

func (f *SettingsForm) save() (string, error) {
	if err := f.applyFormToConfig(); err != nil {
		return "", err
	}
	if err := f.config.Validate(); err != nil {
		return "", err
	}

	targetPath := f.globalPath
	if f.saveTarget == "project" {
		targetPath = f.projectPath
	}
	if err := config.Save(f.config, targetPath); err != nil {
		return "", err
	}
	return targetPath, nil
}

// applyFormToConfig copies form field values back to the config struct.
func (f *SettingsForm) applyFormToConfig() error {
	workers, err := strconv.Atoi(f.workers)
	if err != nil {
		return fmt.Errorf("workers: %w", err)
	}
	quality, err := strconv.Atoi(f.quality)
	if err != nil {
		return fmt.Errorf("jpeg quality: %w", err)
	}

	f.config.Workers = workers
	f.config.JPEGQuality = quality
	f.config.Format = f.format
	f.config.Filter = f.filter
	f.config.LogLevel = f.logLevel
	f.config.HistoryDB = f.historyDB
	f.config.Overwrite = f.overwrite
	f.config.AbortOnError = f.abortOnError
	f.config.FailOnTaskError = f.failOnTaskError
	return nil
}

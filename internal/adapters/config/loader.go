// Package config provides the configuration loader for reload.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultDir is the source directory used when no configuration file exists.
const DefaultDir = "units"

// DefaultExtensions are the source extensions used when none are configured.
var DefaultExtensions = []string{".hcl", ".yaml", ".yml"}

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger   ports.Logger
	validate *validator.Validate
}

// NewLoader creates a new configuration loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load discovers reload.yaml in cwd or one of its parents. Defaults rooted at
// cwd are returned when no file exists.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	if configPath == "" {
		l.Logger.Debug("no configuration found, using defaults", "directory", cwd)
		file := &Reloadfile{Dirs: []string{DefaultDir}}
		return l.build(file, filepath.Join(filepath.Clean(cwd), domain.ConfigFileName))
	}

	var file Reloadfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "config_path", configPath)
	}

	if err := l.validate.Struct(&file); err != nil {
		return nil, validationError(err, configPath)
	}

	cfg, err := l.build(&file, configPath)
	if err != nil {
		return nil, zerr.With(err, "config_path", configPath)
	}

	if file.Version != "" && file.Version != "1" {
		l.Logger.Warn(fmt.Sprintf("unsupported configuration version %q, reading it as version 1", file.Version),
			"config_path", configPath)
	}

	return cfg, nil
}

// build maps a decoded file to the domain configuration, applying defaults
// and resolving every path against the configuration directory.
func (l *Loader) build(file *Reloadfile, configPath string) (*domain.Config, error) {
	root := resolveRoot(configPath, file.Root)

	cfg := &domain.Config{
		Root:         root,
		Dirs:         resolvePaths(root, canonicalizeStrings(file.Dirs)),
		Extensions:   canonicalizeExtensions(file.Extensions),
		Parallelism:  1,
		StableOrder:  true,
		ContentCheck: file.ContentCheck,
		LockTimeout:  domain.DefaultLockTimeout,
		Exclude: domain.ExcludeConfig{
			Unload: unitSet(file.Exclude.Unload),
			Reload: unitSet(file.Exclude.Reload),
			Load:   unitSet(file.Exclude.Load),
		},
		Watch: domain.WatchConfig{
			Debounce:    domain.DefaultDebounce,
			MinInterval: domain.DefaultMinInterval,
		},
		Log: domain.LogConfig{
			JSON: file.Log.JSON,
		},
		Metrics: domain.MetricsConfig{
			Addr: file.Metrics.Addr,
		},
	}

	if file.Parallelism != nil {
		cfg.Parallelism = *file.Parallelism
	}
	if file.StableOrder != nil {
		cfg.StableOrder = *file.StableOrder
	}

	var err error
	if cfg.LockTimeout, err = parseDuration("lock_timeout", file.LockTimeout, domain.DefaultLockTimeout); err != nil {
		return nil, err
	}
	if cfg.Watch.Debounce, err = parseDuration("watch.debounce", file.Watch.Debounce, domain.DefaultDebounce); err != nil {
		return nil, err
	}
	if cfg.Watch.MinInterval, err = parseDuration(
		"watch.min_interval", file.Watch.MinInterval, domain.DefaultMinInterval,
	); err != nil {
		return nil, err
	}
	if cfg.Log.Level, err = domain.ParseLogLevel(file.Log.Level); err != nil {
		return nil, err
	}

	cfg.State = resolveState(root, file.State)

	return cfg, nil
}

// findConfiguration walks up from startDir until it finds reload.yaml.
// An empty path means none exists up to the filesystem root.
func findConfiguration(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigRead.Error()), "directory", startDir)
	}

	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		info, statErr := os.Stat(candidate)
		switch {
		case statErr == nil && !info.IsDir():
			return candidate, nil
		case statErr != nil && !errors.Is(statErr, os.ErrNotExist):
			return "", zerr.With(zerr.Wrap(statErr, domain.ErrConfigRead.Error()), "config_path", candidate)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func resolveState(root string, dto StateDTO) domain.StateConfig {
	backend := domain.StateBackend(dto.Backend)
	if backend == "" {
		backend = domain.StateBackendJSON
	}

	path := dto.Path
	if path == "" {
		if backend == domain.StateBackendBadger {
			path = domain.DefaultBadgerPath()
		} else {
			path = domain.DefaultStatePath()
		}
	}

	return domain.StateConfig{
		Backend: backend,
		Path:    resolvePath(root, path),
	}
}

func parseDuration(field, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		err = zerr.With(zerr.Wrap(err, domain.ErrConfigInvalid.Error()), "field", field)
		return 0, zerr.With(err, "value", value)
	}
	if d <= 0 {
		err = zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "duration must be positive"), "field", field)
		return 0, zerr.With(err, "value", value)
	}
	return d, nil
}

// validationError reports the first failed field of a validator error.
func validationError(err error, configPath string) error {
	wrapped := zerr.Wrap(domain.ErrConfigInvalid, "configuration failed validation")
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		wrapped = zerr.With(wrapped, "field", fieldErrs[0].Namespace())
		wrapped = zerr.With(wrapped, "rule", fieldErrs[0].Tag())
	}
	return zerr.With(wrapped, "config_path", configPath)
}

func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}

	sorted := make([]string, len(strs))
	copy(sorted, strs)
	slices.Sort(sorted)

	return slices.Compact(sorted)
}

func canonicalizeExtensions(exts []string) []string {
	if len(exts) == 0 {
		return slices.Clone(DefaultExtensions)
	}
	lowered := make([]string, len(exts))
	for i, ext := range exts {
		lowered[i] = strings.ToLower(ext)
	}
	return canonicalizeStrings(lowered)
}

func unitSet(names []string) domain.UnitSet {
	return domain.NewUnitSet(domain.NewInternedStrings(canonicalizeStrings(names)...)...)
}

func resolveRoot(configPath, configuredRoot string) string {
	configDir := filepath.Dir(configPath)
	if configuredRoot == "" {
		return filepath.Clean(configDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(configDir, configuredRoot))
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

func resolvePaths(root string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, resolvePath(root, p))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by findConfiguration
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigRead.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParse.Error())
	}

	return nil
}

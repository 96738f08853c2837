// Package shell runs the load and unload commands declared in unit metadata.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
)

// Meta keys read by the runner.
const (
	MetaLoad   = "load"
	MetaUnload = "unload"
	MetaDir    = "dir"
)

// Environment variables exported to unit commands.
const (
	EnvUnit        = "RELOAD_UNIT"
	EnvKind        = "RELOAD_KIND"
	EnvSources     = "RELOAD_SOURCES"
	EnvStatePrefix = "RELOAD_STATE_"
)

var (
	_ ports.UnitLoader   = (*Runner)(nil)
	_ ports.UnitUnloader = (*Runner)(nil)
)

// Runner implements ports.UnitLoader and ports.UnitUnloader with sh -c.
type Runner struct {
	logger  ports.Logger
	environ []string
	shell   string
}

// NewRunner creates a Runner. environ is filtered through an allow-list
// before it reaches any command.
func NewRunner(logger ports.Logger, environ []string) *Runner {
	return &Runner{
		logger:  logger,
		environ: environ,
		shell:   "sh",
	}
}

// Load runs the unit's load command. Units without one load trivially.
// Carried state is exported as RELOAD_STATE_* variables when the kind restores.
func (r *Runner) Load(ctx context.Context, unit domain.Unit, carried domain.CarriedState) error {
	command := unit.Meta[MetaLoad]
	if command == "" {
		return nil
	}

	env := r.environment(unit)
	if unit.Kind.Capability().Restore {
		env = append(env, stateEnvironment(carried)...)
	}

	stdout := &logWriter{logger: r.logger, level: "info", unit: unit.ID.String()}
	defer func() { _ = stdout.Close() }()

	return r.run(ctx, unit, command, env, stdout)
}

// Unload runs the unit's unload command. When the kind captures, every
// key=value line the command prints becomes carried state.
func (r *Runner) Unload(ctx context.Context, unit domain.Unit) (domain.CarriedState, error) {
	command := unit.Meta[MetaUnload]
	if command == "" {
		return nil, nil
	}

	var captured bytes.Buffer
	logOut := &logWriter{logger: r.logger, level: "info", unit: unit.ID.String()}
	defer func() { _ = logOut.Close() }()
	stdout := io.MultiWriter(logOut, &captured)

	if err := r.run(ctx, unit, command, r.environment(unit), stdout); err != nil {
		return nil, err
	}

	if !unit.Kind.Capability().Capture {
		return nil, nil
	}
	return ParseCaptured(captured.String()), nil
}

// run executes command with stderr forwarded to the logger as warnings.
func (r *Runner) run(ctx context.Context, unit domain.Unit, command string, env []string, stdout io.Writer) error {
	stderr := &logWriter{logger: r.logger, level: "warn", unit: unit.ID.String()}

	cmd := exec.CommandContext(ctx, r.shell, "-c", command) //nolint:gosec // user provided command
	cmd.Dir = workingDir(unit)
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	_ = stderr.Close()

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		err = zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
		return zerr.With(err, "unit", unit.ID.String())
	}
	return nil
}

// workingDir resolves meta.dir against the directory of the unit's first
// source. Without meta.dir the source directory itself is used.
func workingDir(unit domain.Unit) string {
	base := ""
	if len(unit.Sources) > 0 {
		base = filepath.Dir(unit.Sources[0].String())
	}

	dir := unit.Meta[MetaDir]
	switch {
	case dir == "":
		return base
	case filepath.IsAbs(dir):
		return filepath.Clean(dir)
	default:
		return filepath.Join(base, dir)
	}
}

// allowListedEnvVars are the system environment variables inherited by unit commands.
var allowListedEnvVars = map[string]struct{}{
	"HOME":   {},
	"TERM":   {},
	"USER":   {},
	"PATH":   {},
	"TMPDIR": {},
}

func (r *Runner) environment(unit domain.Unit) []string {
	env := make([]string, 0, len(allowListedEnvVars)+3)
	for _, entry := range r.environ {
		k, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			env = append(env, entry)
		}
	}

	sources := make([]string, 0, len(unit.Sources))
	for _, s := range unit.Sources {
		sources = append(sources, s.String())
	}

	return append(env,
		EnvUnit+"="+unit.ID.String(),
		EnvKind+"="+string(unit.Kind),
		EnvSources+"="+strings.Join(sources, string(os.PathListSeparator)),
	)
}

// stateEnvironment flattens carried state into sorted RELOAD_STATE_* entries.
// Nested keys are joined with underscores.
func stateEnvironment(carried domain.CarriedState) []string {
	var env []string
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			key := prefix + envKey(k)
			switch nested := v.(type) {
			case domain.CarriedState:
				walk(key+"_", nested)
			case map[string]any:
				walk(key+"_", nested)
			default:
				env = append(env, key+"="+fmt.Sprint(v))
			}
		}
	}
	walk(EnvStatePrefix, carried)
	slices.Sort(env)
	return env
}

// envKey upper-cases k and replaces anything outside [A-Z0-9_] with an underscore.
func envKey(k string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, k)
}

// ParseCaptured reads key=value lines. Dotted keys nest, blank lines and
// lines starting with # are skipped, and lines without '=' are ignored.
func ParseCaptured(out string) domain.CarriedState {
	var state domain.CarriedState
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" || strings.ContainsAny(k, " \t") {
			continue
		}

		entry := map[string]any{}
		parts := strings.Split(k, ".")
		node := entry
		for _, p := range parts[:len(parts)-1] {
			child := map[string]any{}
			node[p] = child
			node = child
		}
		node[parts[len(parts)-1]] = strings.TrimSpace(v)

		state = domain.DeepMerge(state, entry)
	}
	return state
}

type logWriter struct {
	logger ports.Logger
	level  string
	unit   string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}

	if w.level == "info" {
		w.logger.Info(msg, "unit", w.unit)
	} else {
		w.logger.Warn(msg, "unit", w.unit)
	}
}

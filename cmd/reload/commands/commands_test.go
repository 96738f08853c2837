package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/reload/cmd/reload/commands"
	"go.trai.ch/reload/internal/app"
	"go.trai.ch/reload/internal/build"
	"go.trai.ch/reload/internal/core/domain"
)

type mockApp struct {
	runFunc    func(ctx context.Context, opts app.RunOptions) (*domain.Report, error)
	watchFunc  func(ctx context.Context, opts app.WatchOptions) error
	statusFunc func(ctx context.Context) (*domain.Config, *domain.ScanState, error)
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) (*domain.Report, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return &domain.Report{Status: domain.RunCompleted}, nil
}

func (m *mockApp) Watch(ctx context.Context, opts app.WatchOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) Status(ctx context.Context) (*domain.Config, *domain.ScanState, error) {
	if m.statusFunc != nil {
		return m.statusFunc(ctx)
	}
	return &domain.Config{}, domain.NewScanState(), nil
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) (*domain.Report, error) {
				captured = opts
				return &domain.Report{Status: domain.RunCompleted}, nil
			},
		}

		_, err := execute(t, mock, "run",
			"--mode", "pattern", "--pattern", "^api",
			"--exclude-unload", "db", "--exclude-unload", "cache",
			"--exclude-reload", "web",
			"--full",
		)
		require.NoError(t, err)

		assert.Equal(t, domain.ModePattern, captured.Mode)
		assert.Equal(t, "^api", captured.Pattern)
		assert.Equal(t, []string{"db", "cache"}, captured.ExcludeUnload)
		assert.Equal(t, []string{"web"}, captured.ExcludeReload)
		assert.True(t, captured.Full)
		assert.True(t, captured.Throw)
	})

	t.Run("no-throw disables throwing", func(t *testing.T) {
		var captured app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) (*domain.Report, error) {
				captured = opts
				return &domain.Report{Status: domain.RunCompleted}, nil
			},
		}

		_, err := execute(t, mock, "run", "--no-throw")
		require.NoError(t, err)
		assert.False(t, captured.Throw)
		assert.Equal(t, domain.ModeChanged, captured.Mode)
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) (*domain.Report, error) {
				panic("should not be called")
			},
		}

		_, err := execute(t, mock, "run", "--mode", "sometimes")
		require.ErrorIs(t, err, domain.ErrUnknownMode)
	})

	t.Run("prints report as json", func(t *testing.T) {
		failed := domain.NewInternedString("m")
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) (*domain.Report, error) {
				return &domain.Report{
					RunID:  "run-1",
					Status: domain.RunFailed,
					Loaded: domain.NewInternedStrings("a"),
					Failed: &failed,
					Cause:  errors.New("boom"),
				}, nil
			},
		}

		out, err := execute(t, mock, "run", "--json", "--no-throw")
		require.ErrorIs(t, err, domain.ErrRunFailed)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, "run-1", decoded["run_id"])
		assert.Equal(t, "Failed", decoded["status"])
		assert.Equal(t, "m", decoded["failed"])
		assert.Equal(t, "boom", decoded["cause"])
		assert.Equal(t, []any{}, decoded["unloaded"])
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) (*domain.Report, error) {
				return nil, errors.New("simulated error")
			},
		}

		_, err := execute(t, mock, "run")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Watch(t *testing.T) {
	var captured app.WatchOptions
	mock := &mockApp{
		watchFunc: func(_ context.Context, opts app.WatchOptions) error {
			captured = opts
			return nil
		},
	}

	_, err := execute(t, mock, "watch", "--metrics-addr", ":9090", "--mode", "all-loaded")
	require.NoError(t, err)
	assert.Equal(t, ":9090", captured.MetricsAddr)
	assert.Equal(t, domain.ModeAllLoaded, captured.Run.Mode)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}

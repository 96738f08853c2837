package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/reload/internal/core/domain"
)

func TestRunStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status     domain.RunStatus
		isTerminal bool
	}{
		{domain.RunScheduled, false},
		{domain.RunRunning, false},
		{domain.RunCompleted, true},
		{domain.RunFailed, true},
		{domain.RunCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.status.IsTerminal())
		})
	}
}

func TestTaskStatus_IsTerminal(t *testing.T) {
	assert.False(t, domain.TaskPending.IsTerminal())
	assert.False(t, domain.TaskRunning.IsTerminal())
	assert.True(t, domain.TaskCompleted.IsTerminal())
	assert.True(t, domain.TaskFailed.IsTerminal())
	assert.True(t, domain.TaskCancelled.IsTerminal())
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    domain.LogLevel
		expected string
	}{
		{domain.LogLevelDebug, "DEBUG"},
		{domain.LogLevelInfo, "INFO"},
		{domain.LogLevelWarn, "WARN"},
		{domain.LogLevelError, "ERROR"},
		{domain.LogLevel(999), "INFO"}, // Default case
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.LogLevel
	}{
		{"debug", domain.LogLevelDebug},
		{"DEBUG", domain.LogLevelDebug},
		{"", domain.LogLevelInfo},
		{"info", domain.LogLevelInfo},
		{"warning", domain.LogLevelWarn},
		{"error", domain.LogLevelError},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := domain.ParseLogLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}

	_, err := domain.ParseLogLevel("loud")
	require.ErrorIs(t, err, domain.ErrConfigInvalid)
}

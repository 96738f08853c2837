package domain_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestTask_String(t *testing.T) {
	assert.Equal(t, "unload a", domain.Unload(id("a")).String())
	assert.Equal(t, "load a", domain.Load(id("a")).String())
}

func TestPlan_Tasks(t *testing.T) {
	plan := &domain.Plan{
		Before: []domain.Task{domain.Unload(id("a"))},
		Forks: []*domain.Plan{
			{Before: []domain.Task{domain.Unload(id("b"))}, After: []domain.Task{domain.Load(id("b"))}},
			{After: []domain.Task{domain.Load(id("c"))}},
		},
		After: []domain.Task{domain.Load(id("a"))},
	}

	var got []string
	for task := range plan.Tasks() {
		got = append(got, task.String())
	}

	assert.Equal(t, []string{"unload a", "unload b", "load b", "load c", "load a"}, got)
	assert.Equal(t, 5, plan.Len())
	assert.False(t, plan.Empty())
	assert.True(t, (&domain.Plan{}).Empty())
}

func TestParseMode(t *testing.T) {
	mode, err := domain.ParseMode("")
	assert.NoError(t, err)
	assert.Equal(t, domain.ModeChanged, mode)

	mode, err = domain.ParseMode("all-discovered")
	assert.NoError(t, err)
	assert.Equal(t, domain.ModeAllDiscovered, mode)

	_, err = domain.ParseMode("everything")
	assert.ErrorIs(t, err, domain.ErrUnknownMode)
}

func TestUnitError(t *testing.T) {
	cause := assert.AnError
	err := &domain.UnitError{Unit: id("m"), Op: domain.OpLoad, Err: cause}

	assert.Equal(t, "load m: "+cause.Error(), err.Error())
	assert.ErrorIs(t, err, domain.ErrUnitLoad)
	assert.ErrorIs(t, err, cause)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, domain.Classify(domain.ErrStateRead, nil))

	cause := zerr.With(zerr.Wrap(fs.ErrNotExist, "failed to read source"), "source", "a.yaml")
	err := zerr.With(domain.Classify(domain.ErrSourceParse, cause), "source", "a.yaml")

	assert.ErrorIs(t, err, domain.ErrSourceParse)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, domain.ErrStateRead)
	assert.Contains(t, err.Error(), "source parse failed: failed to read source")
}

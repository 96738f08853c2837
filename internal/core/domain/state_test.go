package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/reload/internal/core/domain"
)

func TestDeepMerge(t *testing.T) {
	prev := domain.CarriedState{
		"port": "8080",
		"conn": map[string]any{"host": "old", "pool": 4},
	}
	next := domain.CarriedState{
		"conn": map[string]any{"host": "new"},
		"pid":  "42",
	}

	merged := domain.DeepMerge(prev, next)

	assert.Equal(t, domain.CarriedState{
		"port": "8080",
		"pid":  "42",
		"conn": map[string]any{"host": "new", "pool": 4},
	}, merged)
	assert.Equal(t, "old", prev["conn"].(map[string]any)["host"], "inputs must not be modified")
}

func TestDeepMerge_Empty(t *testing.T) {
	assert.Nil(t, domain.DeepMerge(nil, nil))
	assert.Equal(t, domain.CarriedState{"k": "v"}, domain.DeepMerge(nil, domain.CarriedState{"k": "v"}))
	assert.Equal(t, domain.CarriedState{"k": "v"}, domain.DeepMerge(domain.CarriedState{"k": "v"}, nil))
}

func TestScanState_Clone(t *testing.T) {
	s := domain.NewScanState()
	s.Watermark = 10
	s.Loaded.Add(id("a"))
	s.PendingUnload = domain.NewInternedStrings("a")

	c := s.Clone()
	c.Loaded.Add(id("b"))
	c.PendingUnload[0] = id("z")
	c.Broken[id("b")] = "boom"

	assert.Equal(t, set("a"), s.Loaded)
	assert.Equal(t, []string{"a"}, domain.Strings(s.PendingUnload))
	assert.Empty(t, s.Broken)
	assert.Equal(t, int64(10), c.Watermark)
}

func TestScanState_CloneNil(t *testing.T) {
	var s *domain.ScanState
	c := s.Clone()

	require.NotNil(t, c)
	assert.NotNil(t, c.Loaded)
	assert.NotNil(t, c.Units)
}

func TestScanState_JSON(t *testing.T) {
	s := domain.NewScanState()
	s.Watermark = 99
	s.Loaded = set("b", "a")
	s.Sources[id("units/a.yaml")] = domain.Source{
		ID:           id("units/a.yaml"),
		LastModified: 7,
		Declarations: map[domain.InternedString]domain.Declaration{
			id("a"): {Kind: domain.KindStateful},
		},
	}
	s.Units = domain.MergeUnits(s.Sources)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"loaded":["a","b"]`)

	var decoded domain.ScanState
	require.NoError(t, json.Unmarshal(data, &decoded))
	decoded.Normalize()

	assert.Equal(t, s.Watermark, decoded.Watermark)
	assert.Equal(t, s.Loaded, decoded.Loaded)
	assert.Equal(t, s.Units, decoded.Units)
	assert.NotNil(t, decoded.Carried)
}

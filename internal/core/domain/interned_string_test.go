package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/reload/internal/core/domain"
)

func TestInternedString(t *testing.T) {
	is1 := domain.NewInternedString("hello")
	is2 := domain.NewInternedString("hello")

	assert.Equal(t, is1, is2)
	assert.Equal(t, "hello", is1.String())
	assert.False(t, is1.IsZero())
	assert.True(t, domain.InternedString{}.IsZero())
	assert.Empty(t, domain.InternedString{}.String())
}

func TestInternedString_Compare(t *testing.T) {
	a := domain.NewInternedString("a")
	b := domain.NewInternedString("b")

	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Zero(t, a.Compare(domain.NewInternedString("a")))
}

func TestInternedStringJSON(t *testing.T) {
	t.Run("Value in struct", func(t *testing.T) {
		type testStruct struct {
			Name domain.InternedString `json:"name"`
		}

		data, err := json.Marshal(testStruct{Name: domain.NewInternedString("api")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"api"}`, string(data))

		var decoded testStruct
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "api", decoded.Name.String())
	})

	t.Run("Map key", func(t *testing.T) {
		m := map[domain.InternedString]int{domain.NewInternedString("db"): 1}

		data, err := json.Marshal(m)
		require.NoError(t, err)
		assert.JSONEq(t, `{"db":1}`, string(data))

		var decoded map[domain.InternedString]int
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, 1, decoded[domain.NewInternedString("db")])
	})
}

func TestNewInternedStrings(t *testing.T) {
	ids := domain.NewInternedStrings("build", "test", "build")

	require.Len(t, ids, 3)
	assert.Equal(t, ids[0], ids[2])
	assert.Equal(t, []string{"build", "test", "build"}, domain.Strings(ids))
	assert.Empty(t, domain.NewInternedStrings())
}

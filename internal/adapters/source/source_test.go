package source_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/reload/internal/adapters/source"
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
)

func id(s string) domain.InternedString {
	return domain.NewInternedString(s)
}

func writeSource(t *testing.T, name, content string) domain.InternedString {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return id(path)
}

func TestYAMLReader_Read(t *testing.T) {
	src := writeSource(t, "units.yaml", `
units:
  api:
    dependencies: [db, cache, db]
    kind: stateful
    meta:
      load: ./start.sh
    no_reload: true
  db: {}
`)

	decls, err := source.NewYAMLReader().Read(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, decls, 2)

	api := decls[id("api")]
	assert.Equal(t, domain.NewInternedStrings("cache", "db"), api.Dependencies)
	assert.Equal(t, domain.KindStateful, api.Kind)
	assert.Equal(t, map[string]string{"load": "./start.sh"}, api.Meta)
	assert.True(t, api.NoReload)
	assert.False(t, api.NoUnload)

	db := decls[id("db")]
	assert.Equal(t, domain.KindModule, db.Kind)
	assert.Empty(t, db.Dependencies)
}

func TestYAMLReader_EmptyFile(t *testing.T) {
	decls, err := source.NewYAMLReader().Read(context.Background(), writeSource(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestYAMLReader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: "units: [unterminated"},
		{name: "unknown field", content: "units:\n  a:\n    depends: [b]\n"},
		{name: "unknown kind", content: "units:\n  a:\n    kind: weird\n"},
		{name: "empty dependency", content: "units:\n  a:\n    dependencies: [\"\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.NewYAMLReader().Read(context.Background(), writeSource(t, "bad.yaml", tt.content))
			require.ErrorIs(t, err, domain.ErrSourceParse)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := source.NewYAMLReader().Read(context.Background(), id(filepath.Join(t.TempDir(), "gone.yaml")))
		require.ErrorIs(t, err, domain.ErrSourceParse)
		require.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestHCLReader_Read(t *testing.T) {
	src := writeSource(t, "units.hcl", `
unit "api" {
  dependencies = ["db"]
  kind         = "stateful"
  meta = {
    load = "${env.APP_HOME}/start.sh"
    port = 8080
  }
}

unit "db" {
  no_unload = true
}
`)

	decls, err := source.NewHCLReader([]string{"APP_HOME=/srv/app"}).Read(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, decls, 2)

	api := decls[id("api")]
	assert.Equal(t, domain.NewInternedStrings("db"), api.Dependencies)
	assert.Equal(t, domain.KindStateful, api.Kind)
	assert.Equal(t, map[string]string{"load": "/srv/app/start.sh", "port": "8080"}, api.Meta)

	db := decls[id("db")]
	assert.True(t, db.NoUnload)
	assert.Nil(t, db.Meta)
}

func TestHCLReader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "syntax", content: `unit "a" {`},
		{name: "unknown attribute", content: "unit \"a\" {\n  depends = [\"b\"]\n}\n"},
		{name: "duplicate unit", content: "unit \"a\" {}\nunit \"a\" {}\n"},
		{name: "unknown variable", content: "unit \"a\" {\n  meta = { x = missing.y }\n}\n"},
		{name: "meta not a map", content: "unit \"a\" {\n  meta = [\"x\"]\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.NewHCLReader(nil).Read(context.Background(), writeSource(t, "bad.hcl", tt.content))
			require.ErrorIs(t, err, domain.ErrSourceParse)
		})
	}
}

func TestReader_Dispatch(t *testing.T) {
	r := source.NewDefaultReader(nil)
	assert.Equal(t, []string{".hcl", ".yaml", ".yml"}, r.Extensions())

	yml := writeSource(t, "a.YML", "units:\n  a: {}\n")
	decls, err := r.Read(context.Background(), yml)
	require.NoError(t, err)
	assert.Contains(t, decls, id("a"))

	hcl := writeSource(t, "b.hcl", "unit \"b\" {}\n")
	decls, err = r.Read(context.Background(), hcl)
	require.NoError(t, err)
	assert.Contains(t, decls, id("b"))

	_, err = r.Read(context.Background(), writeSource(t, "c.toml", ""))
	require.ErrorIs(t, err, domain.ErrUnknownSourceFormat)
}

// countingReader blocks until released so that concurrent callers overlap.
type countingReader struct {
	calls   atomic.Int32
	release chan struct{}
}

func (c *countingReader) Read(context.Context, domain.InternedString) (map[domain.InternedString]domain.Declaration, error) {
	c.calls.Add(1)
	<-c.release
	return map[domain.InternedString]domain.Declaration{id("a"): {Kind: domain.KindModule}}, nil
}

func TestReader_SharesConcurrentReads(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		inner := &countingReader{release: make(chan struct{})}
		r := source.NewReader(map[string]ports.SourceReader{".yaml": inner})
		src := id("/virtual/a.yaml")

		const callers = 4
		var wg sync.WaitGroup
		results := make([]map[domain.InternedString]domain.Declaration, callers)
		for i := range callers {
			wg.Go(func() {
				decls, err := r.Read(context.Background(), src)
				assert.NoError(t, err)
				results[i] = decls
			})
		}

		synctest.Wait()
		close(inner.release)
		wg.Wait()

		assert.Equal(t, int32(1), inner.calls.Load())
		for _, decls := range results {
			assert.Contains(t, decls, id("a"))
		}

		// Each caller owns its map.
		delete(results[0], id("a"))
		assert.Contains(t, results[1], id("a"))
	})
}

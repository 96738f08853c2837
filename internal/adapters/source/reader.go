package source

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.SourceReader = (*Reader)(nil)

// Reader dispatches to a format reader by file extension. Concurrent reads
// of the same source share one parse.
type Reader struct {
	formats map[string]ports.SourceReader
	group   singleflight.Group
}

// NewReader creates a Reader. formats maps a lowercase extension with its
// leading dot to the reader handling it.
func NewReader(formats map[string]ports.SourceReader) *Reader {
	return &Reader{formats: formats}
}

// NewDefaultReader handles YAML and HCL sources.
func NewDefaultReader(environ []string) *Reader {
	yamlReader := NewYAMLReader()
	return NewReader(map[string]ports.SourceReader{
		".yaml": yamlReader,
		".yml":  yamlReader,
		".hcl":  NewHCLReader(environ),
	})
}

// Extensions returns the handled extensions in sorted order.
func (r *Reader) Extensions() []string {
	return slices.Sorted(maps.Keys(r.formats))
}

// Read parses source with the reader registered for its extension.
func (r *Reader) Read(
	ctx context.Context,
	source domain.InternedString,
) (map[domain.InternedString]domain.Declaration, error) {
	ext := strings.ToLower(filepath.Ext(source.String()))
	format, ok := r.formats[ext]
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrUnknownSourceFormat, "no reader for source"), "source", source.String())
		return nil, zerr.With(err, "extension", ext)
	}

	v, err, _ := r.group.Do(source.String(), func() (any, error) {
		return format.Read(ctx, source)
	})
	if err != nil {
		return nil, err
	}

	decls, _ := v.(map[domain.InternedString]domain.Declaration)
	// Callers sharing a result must not see each other's writes.
	return maps.Clone(decls), nil
}

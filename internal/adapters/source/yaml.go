package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.SourceReader = (*YAMLReader)(nil)

// yamlFile is the top-level document of a YAML source:
//
//	units:
//	  api:
//	    dependencies: [db]
//	    kind: stateful
//	    meta:
//	      load: ./start.sh
type yamlFile struct {
	Units map[string]unitEntry `yaml:"units"`
}

// YAMLReader reads .yaml and .yml sources.
type YAMLReader struct{}

// NewYAMLReader creates a new YAMLReader.
func NewYAMLReader() *YAMLReader {
	return &YAMLReader{}
}

// Read parses the source file. Unknown fields are rejected.
func (r *YAMLReader) Read(
	_ context.Context,
	source domain.InternedString,
) (map[domain.InternedString]domain.Declaration, error) {
	data, err := os.ReadFile(source.String())
	if err != nil {
		return nil, parseError(zerr.Wrap(err, "failed to read source"), source)
	}

	var file yamlFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, parseError(zerr.Wrap(err, "failed to decode yaml"), source)
	}

	decls, err := declarations(file.Units)
	if err != nil {
		return nil, parseError(err, source)
	}
	return decls, nil
}

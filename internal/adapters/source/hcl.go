package source

import (
	"context"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"go.trai.ch/reload/internal/core/domain"
	"go.trai.ch/reload/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceReader = (*HCLReader)(nil)

// hclFile is the top-level body of an HCL source:
//
//	unit "api" {
//	  dependencies = ["db"]
//	  kind         = "stateful"
//	  meta = {
//	    load = "${env.HOME}/start.sh"
//	  }
//	}
type hclFile struct {
	Units []hclUnit `hcl:"unit,block"`
}

type hclUnit struct {
	Name         string         `hcl:"name,label"`
	Dependencies []string       `hcl:"dependencies,optional"`
	Kind         string         `hcl:"kind,optional"`
	Meta         hcl.Expression `hcl:"meta,optional"`
	NoUnload     bool           `hcl:"no_unload,optional"`
	NoLoad       bool           `hcl:"no_load,optional"`
	NoReload     bool           `hcl:"no_reload,optional"`
}

// HCLReader reads .hcl sources. Expressions may refer to the process
// environment as env.NAME.
type HCLReader struct {
	evalCtx *hcl.EvalContext
}

// NewHCLReader creates an HCLReader whose env object holds environ, given
// in os.Environ form.
func NewHCLReader(environ []string) *HCLReader {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" || !utf8.ValidString(k) || !utf8.ValidString(v) {
			continue
		}
		vars[k] = cty.StringVal(v)
	}

	env := cty.MapValEmpty(cty.String)
	if len(vars) > 0 {
		env = cty.MapVal(vars)
	}

	return &HCLReader{
		evalCtx: &hcl.EvalContext{
			Variables: map[string]cty.Value{"env": env},
		},
	}
}

// Read parses and decodes the source file. A fresh parser is used per call
// since hclparse.Parser caches every file it has seen.
func (r *HCLReader) Read(
	_ context.Context,
	source domain.InternedString,
) (map[domain.InternedString]domain.Declaration, error) {
	src, err := os.ReadFile(source.String())
	if err != nil {
		return nil, parseError(zerr.Wrap(err, "failed to read source"), source)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, source.String())
	if diags.HasErrors() {
		return nil, parseError(zerr.Wrap(diags, "failed to parse hcl"), source)
	}

	var body hclFile
	if diags := gohcl.DecodeBody(file.Body, r.evalCtx, &body); diags.HasErrors() {
		return nil, parseError(zerr.Wrap(diags, "failed to decode hcl"), source)
	}

	entries := make(map[string]unitEntry, len(body.Units))
	for _, u := range body.Units {
		if _, dup := entries[u.Name]; dup {
			return nil, parseError(zerr.With(zerr.New("unit declared twice"), "unit", u.Name), source)
		}

		meta, err := r.meta(u.Meta)
		if err != nil {
			return nil, parseError(zerr.With(err, "unit", u.Name), source)
		}

		entries[u.Name] = unitEntry{
			Dependencies: u.Dependencies,
			Kind:         u.Kind,
			Meta:         meta,
			NoUnload:     u.NoUnload,
			NoLoad:       u.NoLoad,
			NoReload:     u.NoReload,
		}
	}

	decls, err := declarations(entries)
	if err != nil {
		return nil, parseError(err, source)
	}
	return decls, nil
}

// meta evaluates the meta attribute and converts every value to a string,
// so numbers and bools are accepted as well.
func (r *HCLReader) meta(expr hcl.Expression) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}

	val, diags := expr.Value(r.evalCtx)
	if diags.HasErrors() {
		return nil, zerr.Wrap(diags, "failed to evaluate meta")
	}
	if val.IsNull() {
		return nil, nil
	}

	val, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, zerr.Wrap(err, "meta must be a map of strings")
	}
	if !val.IsWhollyKnown() || val.LengthInt() == 0 {
		return nil, nil
	}

	out := make(map[string]string, val.LengthInt())
	for k, v := range val.AsValueMap() {
		if v.IsNull() {
			continue
		}
		out[k] = v.AsString()
	}
	return out, nil
}

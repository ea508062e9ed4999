// Package digest validates story digest documents, the structured summary a
// planning agent produces before it requests images. Documents may be JSON
// or YAML.
package digest

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"

	"github.com/tansive/nanobanana/internal/common/apperrors"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "inline://digest-schema"

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// Schema returns the compiled digest schema.
func Schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = compileSchema(schemaJSON)
	})
	return compiledSchema, compileErr
}

// RawSchema returns the JSON Schema document digests are validated against.
func RawSchema() []byte {
	return bytes.Clone(schemaJSON)
}

func compileSchema(schema []byte) (*jsonschema.Schema, error) {
	if !gjson.ValidBytes(schema) {
		return nil, fmt.Errorf("invalid JSON schema")
	}
	compiler := jsonschema.NewCompiler()
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		if url == schemaURL {
			return io.NopCloser(bytes.NewReader(schema)), nil
		}
		return nil, fmt.Errorf("unsupported schema ref: %s", url)
	}
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schema)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	s, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return s, nil
}

// Summary reports what a valid digest contains.
type Summary struct {
	Confidence     string `json:"confidence"`
	SourceType     string `json:"source_type"`
	Characters     int    `json:"characters"`
	Locations      int    `json:"locations"`
	NeedsInterview int    `json:"needs_interview"`
	Ambiguities    int    `json:"ambiguities"`
}

// Validate checks data against the digest schema. On failure the returned
// error wraps an apperrors.ValidationErrors with one entry per violation.
func Validate(data []byte) (*Summary, error) {
	doc, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, ErrInvalidFormat.Err(err)
	}
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		return nil, ErrInvalidFormat.Msg("digest must be a JSON or YAML object")
	}
	schema, err := Schema()
	if err != nil {
		return nil, ErrDigestError.MsgErr("unable to load digest schema", err)
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, ErrInvalidFormat.Err(err)
	}
	if err := schema.Validate(v); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, ErrDigestError.Err(err)
		}
		return nil, ErrInvalidDigest.Err(collect(verr))
	}

	r := gjson.ParseBytes(doc)
	return &Summary{
		Confidence:     r.Get("meta.confidence").String(),
		SourceType:     r.Get("meta.source_type").String(),
		Characters:     int(r.Get("extracted.characters.#").Int()),
		Locations:      int(r.Get("extracted.locations.#").Int()),
		NeedsInterview: int(r.Get("needs_interview.#").Int()),
		Ambiguities:    int(r.Get("ambiguities.#").Int()),
	}, nil
}

// Violations returns the per-field schema violations carried by an error
// from Validate, or nil.
func Violations(err error) apperrors.ValidationErrors {
	ae, ok := err.(apperrors.Error)
	if !ok {
		return nil
	}
	for _, e := range ae.UnwrapAll() {
		if ves, ok := e.(apperrors.ValidationErrors); ok {
			return ves
		}
	}
	return nil
}

// collect flattens the leaf causes of a schema violation, ordered by
// instance location.
func collect(verr *jsonschema.ValidationError) apperrors.ValidationErrors {
	var out apperrors.ValidationErrors
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			field := e.InstanceLocation
			if field == "" {
				field = "/"
			}
			out = append(out, apperrors.ValidationError{Field: field, ErrStr: e.Message})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(verr)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

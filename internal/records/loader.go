package records

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/inferloop/synthetizer/pkg/errors"
)

// LoadDocument reads a JSON or YAML file into generic values. Integral
// numbers decode as int rather than float64.
func LoadDocument(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, errors.CodeInvalidPath, "failed to read document").
			WithContext("file", path)
	}
	return DecodeDocument(data)
}

// DecodeDocument decodes JSON or YAML bytes
func DecodeDocument(data []byte) (any, error) {
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, errors.CodeInvalidPath, "document is neither JSON nor YAML")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.WrapError(err, errors.ErrorTypeInvalidInput, errors.CodeInvalidPath, "failed to decode document")
	}
	return normalize(doc), nil
}

// LoadValues reads a document and returns the values at path. An empty path
// expects the document itself to be a list of observed values.
func LoadValues(file, path string, flatten int) ([]any, error) {
	doc, err := LoadDocument(file)
	if err != nil {
		return nil, err
	}
	if path == "" {
		values, ok := doc.([]any)
		if !ok {
			return nil, errors.NewInvalidInputError(errors.CodeInvalidPath, "document is not a list of values and no field path was given").
				WithContext("file", file)
		}
		return values, nil
	}
	return ExtractValues(doc, path, flatten)
}

// normalize converts integral json.Number values to int so that sampled
// values compare equal to Go literals.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = normalize(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = normalize(x[k])
		}
		return x
	}
	return v
}

// Package records reads observed field values out of decoded record
// bundles. Paths are dotted templates such as entry.{}.resource.start where
// {} fans out over every element of a list.
package records

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inferloop/synthetizer/pkg/errors"
)

// FanOut is the path segment that iterates over a list
const FanOut = "{}"

// ExtractValues walks doc along path and returns the reached values. Each
// fan-out segment yields one value per list element; missing keys yield nil.
// flatten concatenates that many levels of nested lists, skipping nil and
// empty entries.
func ExtractValues(doc any, path string, flatten int) ([]any, error) {
	if flatten < 0 {
		return nil, errors.NewInvalidInputError(errors.CodeInvalidPath, "flatten level cannot be negative").
			WithContext("flatten", flatten)
	}
	segments, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	reached, err := walk(doc, segments, path)
	if err != nil {
		return nil, err
	}

	values, ok := reached.([]any)
	if !ok {
		values = []any{reached}
	}

	for level := 0; level < flatten; level++ {
		flat, appErr := flattenOnce(values)
		if appErr != nil {
			return nil, appErr.WithContext("path", path).WithContext("level", level+1)
		}
		values = flat
	}
	return values, nil
}

func splitPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewInvalidInputError(errors.CodeInvalidPath, "field path cannot be empty")
	}
	segments := strings.Split(path, ".")
	for _, s := range segments {
		if s == "" {
			return nil, errors.NewInvalidInputError(errors.CodeInvalidPath, "field path has an empty segment").
				WithContext("path", path)
		}
	}
	return segments, nil
}

func walk(node any, segments []string, path string) (any, error) {
	if len(segments) == 0 || node == nil {
		return node, nil
	}

	segment, rest := segments[0], segments[1:]
	switch n := node.(type) {
	case map[string]any:
		if segment == FanOut {
			return nil, pathError(path, segment, "cannot fan out over a mapping")
		}
		return walk(n[segment], rest, path)

	case []any:
		if segment == FanOut {
			out := make([]any, len(n))
			for i, elem := range n {
				v, err := walk(elem, rest, path)
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return out, nil
		}
		idx, err := strconv.Atoi(segment)
		if err != nil {
			return nil, pathError(path, segment, "list segment must be {} or an index")
		}
		if idx < 0 || idx >= len(n) {
			return nil, nil
		}
		return walk(n[idx], rest, path)
	}

	return nil, pathError(path, segment, fmt.Sprintf("cannot descend into %T", node))
}

func flattenOnce(values []any) ([]any, *errors.AppError) {
	var out []any
	for i, v := range values {
		if v == nil {
			continue
		}
		inner, ok := v.([]any)
		if !ok {
			return nil, errors.NewInvalidInputError(errors.CodeInvalidPath, "cannot flatten a value that is not a list").
				WithContext("index", i)
		}
		out = append(out, inner...)
	}
	return out, nil
}

func pathError(path, segment, message string) *errors.AppError {
	return errors.NewInvalidInputError(errors.CodeInvalidPath, message).
		WithContext("path", path).
		WithContext("segment", segment)
}

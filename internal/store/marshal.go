package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/dimcheck/internal/ir"
	"github.com/roach88/dimcheck/internal/shape"
)

// marshalShapes converts operand shapes to canonical JSON TEXT.
func marshalShapes(shapes []shape.Shape) (string, error) {
	arr := make(ir.Array, len(shapes))
	for i, s := range shapes {
		arr[i] = ir.DimsValue(s)
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("marshal shapes: %w", err)
	}
	return string(data), nil
}

// marshalShape converts a shape to canonical JSON TEXT, or NULL for nil.
// A scalar shape is stored as "[]", distinct from NULL.
func marshalShape(s shape.Shape) (sql.NullString, error) {
	if s == nil {
		return sql.NullString{}, nil
	}
	data, err := ir.MarshalCanonical(ir.DimsValue(s))
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal shape: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalShapes parses a canonical JSON array of shapes.
// Returns an empty slice (not nil) for "[]".
func unmarshalShapes(data string) ([]shape.Shape, error) {
	v, err := ir.ParseValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal shapes: %w", err)
	}
	arr, ok := v.(ir.Array)
	if !ok {
		return nil, fmt.Errorf("unmarshal shapes: expected array, got %T", v)
	}

	shapes := make([]shape.Shape, len(arr))
	for i, elem := range arr {
		dims, err := ir.Dims(elem)
		if err != nil {
			return nil, fmt.Errorf("unmarshal shapes[%d]: %w", i, err)
		}
		shapes[i] = dims
	}
	return shapes, nil
}

// unmarshalShape parses a nullable shape column.
func unmarshalShape(data sql.NullString) (shape.Shape, error) {
	if !data.Valid {
		return nil, nil
	}
	v, err := ir.ParseValue([]byte(data.String))
	if err != nil {
		return nil, fmt.Errorf("unmarshal shape: %w", err)
	}
	dims, err := ir.Dims(v)
	if err != nil {
		return nil, fmt.Errorf("unmarshal shape: %w", err)
	}
	return dims, nil
}

package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrStructural    = errors.New("structural parse error")
	ErrNormalization = errors.New("normalization error")
)

// StructuralParseError is returned when an element the normalizer depends on is missing.
type StructuralParseError struct {
	Field  string
	Reason string
}

func (e *StructuralParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *StructuralParseError) Unwrap() error {
	return ErrStructural
}

// NormalizationError is returned when a value is present but does not have the expected shape.
type NormalizationError struct {
	Field string
	Value string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s: unexpected value %q", e.Field, e.Value)
}

func (e *NormalizationError) Unwrap() error {
	return ErrNormalization
}

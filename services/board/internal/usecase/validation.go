package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type ProblemKind string

const (
	ProblemRequired  ProblemKind = "required"
	ProblemTooLong   ProblemKind = "too_long"
	ProblemExtension ProblemKind = "extension"
	ProblemTooLarge  ProblemKind = "too_large"
	ProblemNotImage  ProblemKind = "not_image"
)

// Problem is one rejected form field. Max is set for length and size limits.
type Problem struct {
	Kind  ProblemKind
	Field string
	Max   int
}

// ValidationError carries every problem found in a submitted form.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = fmt.Sprintf("%s: %s", p.Field, p.Kind)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) add(kind ProblemKind, field string, max int) {
	e.Problems = append(e.Problems, Problem{Kind: kind, Field: field, Max: max})
}

func (e *ValidationError) require(field, value string) {
	if value == "" {
		e.add(ProblemRequired, field, 0)
	}
}

func (e *ValidationError) maxLength(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		e.add(ProblemTooLong, field, max)
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

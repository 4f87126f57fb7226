package unformat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormatSpec is returned when a field's type tag is neither
	// built in nor provided through WithExtraTypes.
	ErrInvalidFormatSpec = errors.New("unformat: format spec not recognised")

	// ErrRepeatedName is returned when a named field appears more than once
	// with different format specs.
	ErrRepeatedName = errors.New("unformat: field name repeated with a different format spec")

	// ErrTooManyFields is returned when the template holds more than
	// MaxFields capturing fields. It surfaces the first time the anchored or
	// unanchored expression is built.
	ErrTooManyFields = errors.New("unformat: too many fields")

	// ErrGroupNaming is returned when a field name cannot be turned into a
	// unique group identifier.
	ErrGroupNaming = errors.New("unformat: cannot name capture group")

	// ErrConversion is returned when a converter rejects the text its field
	// matched.
	ErrConversion = errors.New("unformat: conversion failed")

	// ErrNoMatch is returned by ParseInto when the template did not match.
	// The other entry points report a failed match as a nil result.
	ErrNoMatch = errors.New("unformat: template did not match text")
)

// A CompileError describes a failure to compile one field of a template.
type CompileError struct {
	Template string
	Field    string // raw field text without braces; empty for whole-template errors
	Err      error
}

func (e *CompileError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s (template %q)", e.Err, e.Template)
	}
	return fmt.Sprintf("%s: field {%s} in template %q", e.Err, e.Field, e.Template)
}

func (e *CompileError) Unwrap() error { return e.Err }

// A ConversionError reports a converter failure for one field.
type ConversionError struct {
	Field string // field name, or "#<index>" for a fixed field
	Text  string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("unformat: converting %s from %q: %s", e.Field, e.Text, e.Err)
}

// Unwrap exposes both ErrConversion and the converter's own error.
func (e *ConversionError) Unwrap() []error { return []error{ErrConversion, e.Err} }

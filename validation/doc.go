// Package validation provides request validation: a chainable field
// validator for hand-rolled checks and a struct-tag validator backed by
// go-playground/validator for config and typed payloads.
package validation

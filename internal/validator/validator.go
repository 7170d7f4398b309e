// Package validator provides a Validator type for accumulating field-level
// validation errors while remembering the order in which fields failed.
package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// IdentifierRX matches catalog identifiers such as "AB-1234".
var IdentifierRX = regexp.MustCompile(`^[A-Z]{2}-[0-9]{4}$`)

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid.
type Validator struct {
	Errors map[string]string
	order  []string
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with the given message.
// If key already has an error it is not overwritten, so the first
// failure for a field is always the one that is reported.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
		v.order = append(v.order, key)
	}
}

// Check adds an error for key with message only when ok is false.
// Use this as a single-line guard:
//
//	v.Check(len(name) > 0, "name", "must be provided")
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// First returns the earliest recorded failure. ok is false when the
// Validator is valid.
func (v *Validator) First() (key, message string, ok bool) {
	if len(v.order) == 0 {
		return "", "", false
	}
	key = v.order[0]
	return key, v.Errors[key], true
}

// In returns true if value is present in the list slice.
func In(value string, list ...string) bool {
	for _, item := range list {
		if value == item {
			return true
		}
	}
	return false
}

// Matches returns true if value matches the provided compiled regexp.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// MinChars reports whether value has at least n characters once leading and
// trailing whitespace is removed.
func MinChars(value string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= n
}

// internal/app/system/normalize/normalize.go

// Package normalize cleans user-supplied input before validation, comparison,
// and storage. Every write path and every comparison must go through the same
// function so stored values are always in canonical form.
package normalize

import "strings"

// ClassName trims leading/trailing whitespace and collapses internal
// whitespace runs to single spaces. Case is preserved; case-insensitive
// comparison happens on the folded form at the comparison site.
func ClassName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role lowercases and trims a membership role value.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a free-form query or form value, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

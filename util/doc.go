// Package util provides small shared helpers: size and boolean parsing for
// form values, string splitting, and pointer utilities.
package util

// Package logger wraps zerolog with service-wide conventions: a global
// logger initialized once at startup, component tagging, and structured
// field helpers. All asrd packages log through this package.
package logger

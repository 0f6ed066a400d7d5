// Package server provides the HTTP surface of the transcription service:
// a Gin engine mounted on a ServeMux with h2c, the standard middleware
// stack, and the transcription, health, and introspection endpoints.
package server

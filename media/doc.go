// Package media prepares request audio for the pipeline: it stages uploads
// or remote files in a per-request workspace, enforces the size ceiling and
// allowed container formats, and converts everything to mono 16 kHz WAV
// with ffmpeg before the models see it.
package media

// Package process runs external tools (ffmpeg, ffprobe) with captured
// output and graceful termination. Cancellation sends SIGTERM to the
// process group first and escalates to SIGKILL after a grace period.
package process

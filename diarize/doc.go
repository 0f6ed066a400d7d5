// Package diarize defines speaker diarization: attributing time ranges of
// the audio to numbered speakers. A missing or failing diarizer degrades
// gracefully; segments simply carry no speaker.
package diarize

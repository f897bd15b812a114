// Package profiles defines the encoding profile registry.
//
// A profile is a fixed ffmpeg argument list applied at the final mux step.
// The "copy" profile is a lossless remux and is always selectable; every
// other profile re-encodes video with a specific encoder and normalizes
// audio to AAC, and is offered only when the encoder probe reports the
// encoder as usable on this machine.
package profiles

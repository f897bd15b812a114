// Package ffmpeg wraps invocation of the external ffmpeg binary.
//
// Executor abstracts subprocess execution so the export pipeline and the
// encoder probe can be tested without ffmpeg installed. The real executor
// runs commands with no stdin and captures output; ffmpeg is never given an
// interactive console. Probe caches the binary's self-reported encoder list
// once per process lifetime.
package ffmpeg

// Package export reconstructs Steam capture folders into playable files and
// schedules many such exports concurrently.
//
// A submitted batch becomes one Job per capture folder. Workers pull pending
// jobs under a dynamically adjustable concurrency limit (hard ceiling 16) and
// run the full pipeline per job: locate segment sets, reconstruct each track
// by streaming init segment plus chunks in numeric order, concatenate the
// per-manifest track files with a lossless ffmpeg stream copy, then mux video
// and audio into the destination file with the selected profile's arguments.
//
// Failure isolation is the governing invariant: an error in one job marks
// that job Failed and never disturbs other workers or the batch. Cancellation
// is cooperative; the shared flag is consulted between pipeline stages, jobs
// never start once it is set, and in-flight ffmpeg calls run to completion.
// Every temp artifact a job creates is removed when the job reaches a
// terminal state.
package export

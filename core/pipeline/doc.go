// Package pipeline is the top-level loader orchestrator every concrete
// data loader builds on.
//
// A run takes a batch of fetch tasks through: cache lookup, then (on
// miss) bounded-concurrency fetch via the source fallback coordinator
// with retry and exponential backoff for rate-limit-class failures, then
// cache write and a caller-supplied persist step. Process-tracking
// events bracket the run.
//
// Task lifecycle: Pending -> Succeeded on a cache hit, otherwise
// Pending -> InFlight -> Succeeded | Failed | Skipped. Skipped covers
// pre-fetch validation rejects and never costs a network call. The run's
// terminal state derives from the task outcomes: Success with zero
// failures, CompletedWithErrors when some tasks succeeded and some
// failed, Failed when every attempted task failed.
//
// An auth-classified failure aborts the whole run: remaining tasks are
// failed without fetching so a bad credential surfaces to the operator
// instead of burning quota on guaranteed rejections.
package pipeline

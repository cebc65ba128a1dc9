// Package batch runs collections of work items through a transform with
// a concurrency ceiling.
//
// Items are dispatched in chunks of at most MaxConcurrent, with an
// optional sleep between chunks as cooperative rate limiting toward the
// upstream APIs. Under ContinueOnError every item is attempted and the
// result accounts for each input in exactly one bucket; otherwise the
// first failure halts further dispatch and is returned to the caller.
//
// There is no cancellation of in-flight work mid-batch: a dispatched
// transform always runs to completion.
package batch

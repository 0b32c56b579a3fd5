// Package tasks runs the client's multi-request operations with progress reporting.
//
// # Composite Loads
//
// [Loader.Dashboard] and [Loader.Lookups] issue several independent list requests concurrently and wait for all
// of them. A failing sub-fetch never fails the load: its list defaults to empty and the error is recorded so the
// rest of the screen can render.
//
// # Bulk Downloads
//
// [Loader.BulkDownload] fetches track files with a worker pool paced by a [rate.Limiter]. Per-file failures are
// recorded in the result and never abort the batch.
//
// # Progress Reporting
//
// All operations report through non-blocking channels. [ProgressUpdate] carries the phase, step counters and a
// display message. Updates use select with default so a slow reader never stalls the work.
package tasks

// Package executor runs kdf jobs off the caller's goroutine.
//
// A [kdf.Job] is a self-contained value, so handing it to another goroutine, process or
// host needs nothing beyond a one-shot result slot. [Inline] runs the job in place,
// [Pool] bounds how many jobs hash at once, [Go] starts one job and returns its result
// channel. The redisqueue sub-package moves jobs to remote workers.
//
// # Architecture boundaries
//
// Executors import kdf only. prpass.Profile accepts any value with an Execute method, so
// this package never imports prpass.
//
// # What this package must NOT do
//
//   - Interrupt a running hash. Cancellation stops waiting; the hash finishes and its
//     output is wiped.
//   - Retry a failed job.
package executor

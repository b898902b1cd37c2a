// Package rate provides a Redis-backed fixed-window limiter used to bound how many
// expensive jobs a shared worker fleet accepts.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Callers choose the
// key; redisqueue uses <prefix>:rate:<tier>.
//
// # What this package must NOT do
//
//   - Decide which jobs are limited. That policy lives in executor/redisqueue.
//   - Be imported outside the prpass module.
package rate

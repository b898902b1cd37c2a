// Package secret holds master-key bytes outside the garbage-collected heap.
//
// A [Buffer] is backed by an anonymous mmap region that is mlocked (never swapped) and
// marked MADV_DONTDUMP (excluded from core dumps). When the platform refuses any of those
// steps the buffer falls back to ordinary heap memory and [Buffer.Locked] reports false;
// the contents are still zeroed on [Buffer.Close].
//
// # What this package must NOT do
//
//   - Print buffer contents from String, GoString or error paths.
//   - Import any other prpass package.
package secret

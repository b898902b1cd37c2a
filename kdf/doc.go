// Package kdf implements the key-derivation backends and the deferred job value used by
// prpass.
//
// # Backends
//
// Three backends are compiled in, in preference order:
//
//	argon2id       memory / time / parallelism
//	scrypt         N / r / p
//	pbkdf2         iterations
//
// Every backend carries two cost tiers. [TierSlow] is used once per profile to derive the
// master key; [TierFast] is used for every per-service password.
//
// # Jobs
//
// A [Job] is a fully bound description of one hash invocation: backend name, resolved
// parameters, secret, salt and output length. Building a job never hashes. [Job.Execute]
// is pure and deterministic, and a job survives [Job.MarshalBinary] / [Job.UnmarshalBinary]
// so it can be executed by another goroutine, process or host.
//
// # Architecture boundaries
//
// This package owns hashing only. Field handling, salt construction and password encoding
// live in the root package.
//
// # What this package must NOT do
//
//   - Import any other prpass package except internal/codec.
//   - Print secret or salt bytes from String, GoString or error paths.
//   - Mutate a [Registry] after construction.
package kdf

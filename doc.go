// Package prpass derives a reproducible master key from personal facts a user can
// remember and synthesizes independent, service-specific passwords from it. No password
// is ever stored; the same inputs always regenerate the same key and passwords.
//
// Derivation runs in two stages. A Profile concatenates its field values in schema order,
// hashes them with SHA-512 into a salt and builds a slow-tier [kdf.Job] whose output
// splits into a public [Fingerprint] and the master key. Each service password then
// runs a fast-tier job keyed by the master key and salted by SHA-512 of the service name,
// mapping output bytes onto [CharPool].
//
// Engine methods are safe to call from multiple goroutines after initialization through
// [Builder.Build]. A Profile belongs to one user and one caller at a time.
//
// # Architecture boundaries
//
// prpass is the public surface. It exposes [Engine], [Builder], [Config], [Schema],
// [Profile] and value types. Backends and jobs live in kdf, the fingerprint art in
// fingerprint, off-goroutine execution in executor. Key storage and advisory dispatch
// live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Persist field values, master keys or passwords anywhere.
//   - Print or log a field value or key byte; only the fingerprint is public.
//   - Hash inside a constructor. Only DeriveMasterKey, DeriveMasterKeyWith and
//     DerivePassword execute jobs.
//   - Import executor or metrics exporters (they import prpass or kdf, never the reverse).
//
// # Compatibility contract
//
// The fixed public input, the character pool, the field concatenation order and the
// reference cost tiers determine every derived password. Changing any of them silently
// changes all outputs, and the fingerprint is the only way a user can notice.
package prpass

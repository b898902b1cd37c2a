// Package redisqueue executes kdf jobs on remote workers through a redis list.
//
// A [Client] pushes a CBOR envelope holding a job ID and the encoded job onto
// "<prefix>:jobs" and blocks on "<prefix>:result:<id>". A [Worker] pops envelopes,
// executes them and pushes the result with a TTL. When an AEAD is configured on both
// sides, job and result payloads are sealed with the job ID as associated data, so a
// payload cannot be replayed under another ID.
//
// Workers sharing a prefix can cap how many slow-tier jobs they accept per window with
// Options.SlowJobLimit. The counter lives in "<prefix>:rate:slow", so the cap holds
// across the whole fleet. Rejected jobs reach the client as ErrRemote.
//
// # What this package must NOT do
//
//   - Log or persist job secrets, salts or outputs.
//   - Accept an unsealed payload when an AEAD is configured.
//   - Return an output whose length differs from the job's OutputLen.
package redisqueue

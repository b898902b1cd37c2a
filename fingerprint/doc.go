// Package fingerprint renders the public key fingerprint as a small block of text art so a
// user can confirm at a glance that two sessions derived the same master key.
//
// The art is a pseudo-random walk in the spirit of OpenSSH's "drunken bishop". Instead of
// reading the fingerprint two bits at a time, the fingerprint seeds a ChaCha8 generator
// (via BLAKE3) and the generator drives the walk. [Render] is pure: identical input bytes
// always produce identical text.
//
// # What this package must NOT do
//
//   - Accept master-key bytes; only the public fingerprint is rendered.
//   - Draw colours, clear screens or otherwise assume a terminal.
package fingerprint

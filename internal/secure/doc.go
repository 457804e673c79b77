// Package secure holds resolved passwords in memory without leaving
// plaintext lying around.
//
// Passwords are sealed into memguard enclaves (XSalsa20Poly1305 encrypted,
// mlocked where the platform allows it). The plaintext is only materialized
// for the duration of a Reveal or Open call:
//
//	buf, _ := secure.NewSecureString(password)
//	defer buf.Destroy()
//
//	pw, err := buf.Reveal()
//
// If mlock is unavailable (RLIMIT_MEMLOCK on Linux), memguard falls back to
// ordinary memory; the data is still encrypted at rest.
//
// Call memguard.Purge when the process exits to wipe every enclave key.
package secure

// Package password provides the default PBKDF2 credential hasher. The
// derivation parameters (SHA-1, 10 iterations, 20-byte key, hex encoding)
// match the CouchDB-style digests the user records were migrated with, so
// existing stored digests keep verifying unchanged.
package password

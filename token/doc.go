// Package token implements the stateless two-factor token codec. A token
// embeds its own issue timestamp next to an HMAC over that timestamp keyed
// by the record's salt, so verification needs no server-side challenge
// state: possession of the salt plus a clock is enough to check both
// authenticity and age.
package token

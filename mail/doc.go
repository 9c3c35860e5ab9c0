// Package mail delivers two-factor codes over SMTP. It supports plain,
// STARTTLS, and implicit-TLS transports and builds minimal RFC 2822
// plain-text messages.
package mail

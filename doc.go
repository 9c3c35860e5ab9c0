// Package lockgate implements a credential authentication pipeline with a
// failed-attempt lockout policy and an optional emailed second factor.
//
// The package is storage- and transport-agnostic. Callers wire a [UserStore],
// [PasswordHasher], [TokenCodec], [Mailer], and [SessionStore] through the
// [Builder] and drive the pipeline with [Engine.Login],
// [Engine.VerifyTwoFactor], and [Engine.Logout]. Engine methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// Each operation returns an [Outcome] describing the authentication decision:
// success, success pending a second factor, or a soft rejection with a tagged
// [RejectReason]. Collaborator failures (store, hasher, mailer, session
// backend) are returned as errors and are never downgraded to a soft
// rejection, and never reported as success.
//
// The engine holds no mutable state of its own; the only shared mutable
// resource is the [UserRecord] in the external store. Updates carry the
// record's version and are retried a bounded number of times on conflict.
//
// Default collaborator implementations live in the subpackages: password
// (PBKDF2 hasher), token (time-boxed one-time codes), store (Redis-backed
// user and session stores), and mail (SMTP delivery of two-factor codes).
package lockgate

package lockgate

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method is called before
	// the engine was fully constructed through [Builder.Build].
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrUserNotFound is the sentinel a [UserStore] returns from Find when
	// no record matches the lookup field and value.
	ErrUserNotFound = errors.New("user not found")

	// ErrVersionConflict is the sentinel a [UserStore] returns from Update
	// when the record's version is stale. The engine re-fetches and retries.
	ErrVersionConflict = errors.New("user record version conflict")

	// ErrConflictRetriesExhausted is returned when a record update kept
	// conflicting past the bounded retry budget.
	ErrConflictRetriesExhausted = errors.New("user record update retries exhausted")

	// ErrHasherFailure wraps a password hasher error. Hasher failures are
	// fatal for the request and are never interpreted as a wrong credential.
	ErrHasherFailure = errors.New("password hasher failure")

	// ErrTokenGeneration wraps a two-factor token generation error.
	ErrTokenGeneration = errors.New("two-factor token generation failed")

	// ErrMailDelivery wraps a two-factor delivery error. Delivery failures
	// abort the login; they never fall through to a logged-in state.
	ErrMailDelivery = errors.New("two-factor delivery failed")

	// ErrSessionDestroy wraps a session store destroy error.
	ErrSessionDestroy = errors.New("session destroy failed")
)

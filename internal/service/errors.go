package service

import "errors"

// Redirection error taxonomy. Each value maps to a distinct outward
// signal in the delivery layer. ErrNotValidated is transient (the
// background check has not completed); ErrUnsafe and ErrUnreachable are
// final verdicts and must never be conflated with it.
var (
	ErrInvalidHashFormat = errors.New("hash has invalid format")
	ErrHashNotFound      = errors.New("hash not found")
	ErrNotValidated      = errors.New("short url is still being validated")
	ErrUnreachable       = errors.New("short url target is unreachable")
	ErrUnsafe            = errors.New("short url target is unsafe")
	ErrTooManyRequests   = errors.New("too many redirections for this hash")

	// ErrInvalidTargetURL rejects a syntactically unusable URL at
	// creation time, before a hash is ever handed out.
	ErrInvalidTargetURL = errors.New("target url has invalid format")
)

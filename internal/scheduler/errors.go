package scheduler

// sessionNotFoundError signals an unknown session id.
type sessionNotFoundError struct{ id string }

func (e sessionNotFoundError) Error() string { return "session not found: " + e.id }

// IsSessionNotFound reports whether err indicates an unknown session id.
func IsSessionNotFound(err error) bool {
	_, ok := err.(sessionNotFoundError)
	return ok
}

// sessionExistsError signals a duplicate session id on creation.
type sessionExistsError struct{ id string }

func (e sessionExistsError) Error() string { return "session already exists: " + e.id }

// IsSessionExists reports whether err indicates a duplicate session id.
func IsSessionExists(err error) bool {
	_, ok := err.(sessionExistsError)
	return ok
}

// invalidRequestError signals a malformed create/queue request.
type invalidRequestError struct{ msg string }

func (e invalidRequestError) Error() string { return e.msg }

// ErrInvalidRequest constructs an invalidRequestError.
func ErrInvalidRequest(msg string) error { return invalidRequestError{msg: msg} }

// IsInvalidRequest reports whether err indicates a malformed request.
func IsInvalidRequest(err error) bool {
	_, ok := err.(invalidRequestError)
	return ok
}

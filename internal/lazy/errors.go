package lazy

// viewportNotFoundError signals an unregistered viewport id.
type viewportNotFoundError struct{ id string }

func (e viewportNotFoundError) Error() string { return "viewport not registered: " + e.id }

// IsViewportNotFound reports whether err indicates an unregistered id.
func IsViewportNotFound(err error) bool {
	_, ok := err.(viewportNotFoundError)
	return ok
}

// activationTimeoutError signals that joining an in-flight activation
// exceeded the bounded wait.
type activationTimeoutError struct{ id string }

func (e activationTimeoutError) Error() string { return "activation timed out: " + e.id }

// IsActivationTimeout reports whether err indicates a join timeout.
func IsActivationTimeout(err error) bool {
	_, ok := err.(activationTimeoutError)
	return ok
}

package pool

// slotNotFoundError signals an unknown pool slot id.
type slotNotFoundError struct{ id string }

func (e slotNotFoundError) Error() string { return "pool slot not found: " + e.id }

// IsSlotNotFound reports whether err indicates an unknown slot id.
func IsSlotNotFound(err error) bool {
	_, ok := err.(slotNotFoundError)
	return ok
}

// notInUseError signals a release of a slot that is not in-use. The pool
// state is left unchanged.
type notInUseError struct{ id string }

func (e notInUseError) Error() string { return "pool slot not in-use: " + e.id }

// IsNotInUse reports whether err indicates an invalid release.
func IsNotInUse(err error) bool {
	_, ok := err.(notInUseError)
	return ok
}

package compare

import "errors"

// ErrCodeBothAbsent marks a comparison of two absent sides.
const ErrCodeBothAbsent = "BOTH_ABSENT"

// BothAbsentError is returned when both sides of a comparison are absent.
type BothAbsentError struct {
	What string
}

func (e *BothAbsentError) Error() string {
	return "[" + ErrCodeBothAbsent + "] both " + e.What + "s are absent"
}

// IsBothAbsent reports whether err is a BothAbsentError.
func IsBothAbsent(err error) bool {
	var e *BothAbsentError
	return errors.As(err, &e)
}

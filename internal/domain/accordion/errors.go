package accordion

import "errors"

// ErrIndexOutOfRange is returned when toggling an index outside the list.
var ErrIndexOutOfRange = errors.New("accordion index out of range")

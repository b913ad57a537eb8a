package controls

import "github.com/soir-live/soir/internal/errors"

// Base sentinels. Compare with errors.Is(err, ErrNotInControlLoop) etc;
// errors.Build wraps these directly so Unwrap reaches the same value.
var (
	ErrNotInControlLoop = errors.NewStd("not in control loop")
	ErrControlNotFound  = errors.NewStd("control not found")
)

func newNotInControlLoopError(op string) error {
	return errors.New(ErrNotInControlLoop).
		Component("controls").
		Category(errors.CategoryControl).
		Context("op", op).
		Build()
}

func newControlNotFoundError(name string) error {
	return errors.New(ErrControlNotFound).
		Component("controls").
		Category(errors.CategoryControl).
		Context("name", name).
		Build()
}

// ErrSetNotSupported is returned by Control.Set on any kind but Val.
var ErrSetNotSupported = errors.NewStd("set is only legal on a Val control")

func newSetNotSupportedError(name string, kind Kind) error {
	return errors.New(ErrSetNotSupported).
		Component("controls").
		Category(errors.CategoryControl).
		Context("name", name).
		Context("kind", string(kind)).
		Build()
}

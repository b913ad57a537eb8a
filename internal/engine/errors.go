package engine

import "github.com/soir-live/soir/internal/errors"

var (
	ErrGlobalScopeOnly = errors.NewStd("operation is only legal at global scope, outside any loop")
	ErrIngestPanicked  = errors.NewStd("ingest panicked")
)

func newGlobalScopeOnlyError(op string) error {
	return errors.New(ErrGlobalScopeOnly).
		Component("engine").
		Category(errors.CategoryIngest).
		Context("op", op).
		Build()
}

func newIngestPanicError(recovered any) error {
	return errors.New(ErrIngestPanicked).
		Component("engine").
		Category(errors.CategoryIngest).
		Context("panic", recovered).
		Build()
}

package errorx

import "errors"

// Persistable marks an error returned from inside a transactional update
// whose state changes must still be committed, for example a rejected
// verification code whose failure counter was incremented. The caller still
// receives Err.
type Persistable struct {
	Err error
}

func (e *Persistable) Error() string { return e.Err.Error() }
func (e *Persistable) Unwrap() error { return e.Err }

// NewPersistable returns nil for a nil err.
func NewPersistable(err error) error {
	if err == nil {
		return nil
	}
	return &Persistable{Err: err}
}

func IsPersistable(err error) bool {
	var p *Persistable
	return errors.As(err, &p)
}

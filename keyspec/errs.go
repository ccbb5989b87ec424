package keyspec

import "errors"

var (
	// ErrNoSuchKey reports that a path is absent from a record.
	ErrNoSuchKey = errors.New("no such key")
	// ErrBadPath reports a path that cannot apply to the shape of a record.
	ErrBadPath = errors.New("bad key path")
)

func isNoSuchKey(err error) bool {
	return errors.Is(err, ErrNoSuchKey)
}

package codec

import (
	"errors"

	"github.com/ezrec/novir/translate"
)

var f = translate.From

var (
	// Format errors
	ErrInvalidFile = errors.New(f("invalid or corrupted file"))
)

// ErrPath annotates a load or save failure with the file path.
type ErrPath struct {
	Path string
	Err  error
}

func (err *ErrPath) Error() string {
	return f("%v: %v", err.Path, err.Err)
}

func (err *ErrPath) Unwrap() error {
	return err.Err
}

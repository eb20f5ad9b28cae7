package aseview

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the decoder. Errors that carry an offending
// value are wrapped in a *CodeError and still match these with errors.Is.
var (
	// ErrCast is returned when the input is too short for a fixed-layout record.
	ErrCast = errors.New("buffer too short")

	// ErrInvalidMagic is returned when a header or frame sync marker does not match.
	ErrInvalidMagic = errors.New("invalid magic number")

	// ErrInvalidSize is returned when a record declares a size smaller than its own header.
	ErrInvalidSize = errors.New("invalid record size")

	ErrUnsupportedCelType    = errors.New("unsupported cel type")
	ErrUnsupportedLayerType  = errors.New("unsupported layer type")
	ErrUnsupportedBlendMode  = errors.New("unsupported blend mode")
	ErrUnsupportedColorDepth = errors.New("unsupported color depth")

	// ErrInvalidUTF8Name is returned when a layer name is not valid UTF-8.
	ErrInvalidUTF8Name = errors.New("layer name is not valid utf-8")

	// ErrIndexOutOfRange is returned by random access past the declared count.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// CodeError reports a raw field value the decoder refused.
type CodeError struct {
	Err  error
	Code uint32
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("%v: 0x%X", e.Err, e.Code)
}

func (e *CodeError) Unwrap() error { return e.Err }

func codeError(err error, code uint32) error {
	return &CodeError{Err: err, Code: code}
}

func castError(what string, need, have int) error {
	return fmt.Errorf("%s: %w: need %d bytes, have %d", what, ErrCast, need, have)
}

// CodeOf returns the offending value carried by err, if any.
func CodeOf(err error) (uint32, bool) {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return 0, false
}

package dexparser

import (
	"errors"
	"fmt"
)

// DecodeError reports a structurally corrupt payload: truncated instruction
// data, an account index past the key table, missing transaction meta.
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s", e.What, e.Err)
	}
	return fmt.Sprintf("decode %s", e.What)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func decodeErrorf(format string, args ...interface{}) *DecodeError {
	return &DecodeError{What: fmt.Sprintf(format, args...)}
}

// UnsupportedEncodingError reports a transaction envelope whose encoding the
// view builder cannot rehydrate into a binary transaction.
type UnsupportedEncodingError struct {
	Err error
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported transaction encoding: %s", e.Err)
}

func (e *UnsupportedEncodingError) Unwrap() error { return e.Err }

// InternalInvariantError reports a broken pipeline assumption. It is never
// caused by input data alone.
type InternalInvariantError struct {
	What string
}

func (e *InternalInvariantError) Error() string {
	return fmt.Sprintf("internal invariant violated: %s", e.What)
}

func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func IsUnsupportedEncoding(err error) bool {
	var ue *UnsupportedEncodingError
	return errors.As(err, &ue)
}

package domain

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrOutOfStock = errors.New("out of stock")

	// ErrTxConflict: a watched key changed between read and commit.
	ErrTxConflict = errors.New("optimistic lock conflict")

	// ErrTxAborted: an atomic unit was discarded; nothing was written.
	ErrTxAborted = errors.New("transaction aborted")

	ErrKeyAbsent = errors.New("key absent")
)

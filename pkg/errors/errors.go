package errors

import "errors"

// ErrOptimisticLock the record was modified by another operation since it was read.
var ErrOptimisticLock = errors.New("record was modified concurrently, reload and retry")

// ErrDuplicateKey a write violated a unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

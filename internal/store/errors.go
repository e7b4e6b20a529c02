package store

import "fmt"

// StorageError reports a failure to read, parse or durably write one of the
// data files. Callers treat it as fatal for the operation in progress.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

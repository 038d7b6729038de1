package store

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrInvalidSection  = errors.New("invalid section")
	ErrInvalidDocument = errors.New("invalid stage document")
	ErrCorruptDocument = errors.New("corrupt stored document")
	ErrIndexOutOfRange = errors.New("element index out of range")
)

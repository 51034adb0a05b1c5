package repository

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrOverlap     = errors.New("overlapping booking")
	ErrUnavailable = errors.New("store unavailable")
)

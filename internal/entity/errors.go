package entity

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyRecorded = errors.New("email already recorded for automation and lead")
)

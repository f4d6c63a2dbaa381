package model

import "errors"

var (
	// ErrConfiguration marks invalid run parameters such as non-positive or
	// inverted moving-average windows. It is fatal to the run.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrDataAlignment marks tables that do not share the same date axis.
	ErrDataAlignment = errors.New("data alignment mismatch")
)

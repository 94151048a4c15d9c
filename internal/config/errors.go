package config

import (
	"errors"
)

// Sentinel errors. Validation failures wrap ErrInvalidConfig; classifier
// settings additionally wrap ErrInvalidClassifier.
var (
	ErrInvalidConfig     = errors.New("invalid config")
	ErrInvalidClassifier = errors.New("invalid classifier settings")
	ErrLoadConfig        = errors.New("load config failed")
)

package service

import "errors"

var (
	ErrValidation     = errors.New("validation")     // 400
	ErrNotFound       = errors.New("not found")      // 404
	ErrEmptyCart      = errors.New("empty cart")     // notice, no state change
	ErrAuthentication = errors.New("authentication") // 401
	ErrPersistence    = errors.New("persistence")    // 500, transaction aborted
)

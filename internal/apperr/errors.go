package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrParse         = errors.New("invalid syntax")
	ErrValidation    = errors.New("schema violation")
	ErrInvalidSchema = errors.New("invalid schema")
)

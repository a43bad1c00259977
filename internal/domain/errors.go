package domain

import "errors"

var (
	ErrInvalidActivityCode = errors.New("invalid activity code")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidLayout       = errors.New("invalid layout")
	ErrUnknownPaperSize    = errors.New("unknown paper size")
	ErrInvalidPadMode      = errors.New("invalid pad mode")
)

package navigation

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoRole          = errors.New("no role selected")
	ErrUnknownScreen   = errors.New("unknown screen")
	ErrUnknownRole     = errors.New("unknown role")
	ErrUnknownCommand  = errors.New("unknown command")
)

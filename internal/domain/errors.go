package domain

import "errors"

var (
	ErrNoAccounts        = errors.New("no accounts configured")
	ErrUnauthorized      = errors.New("token is invalid or expired")
	ErrTokenUnavailable  = errors.New("gateway did not issue a token")
	ErrChannelNotOpen    = errors.New("channel is not open")
	ErrInvalidTransition = errors.New("invalid connection state transition")
	ErrUnsupportedProxy  = errors.New("unsupported proxy scheme")
)

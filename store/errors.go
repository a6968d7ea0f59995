package store

import "errors"

var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrShopNotFound      = errors.New("shop not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflictExhausted = errors.New("token number allocation retries exhausted")
)

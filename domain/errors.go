package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	UnexpectedDatabaseError = errors.New("unexpected database error")
)

package apperrors

import "errors"

// Account errors
var (
	ErrDuplicateAccount   = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// Listing errors
var (
	ErrPropertyNotFound  = errors.New("property not found")
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrInvalidBid        = errors.New("invalid bid amount")
	ErrInvalidPropertyID = errors.New("invalid property id")
	ErrInvalidQuery      = errors.New("invalid search query")
)

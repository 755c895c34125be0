package auth

import "github.com/cmlabs-hris/attendance-backend-go/internal/pkg/apperr"

var (
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthenticated, "invalid email or password")
	ErrEmailInUse         = apperr.New(apperr.KindAlreadyExists, "email address is already in use")
	ErrWeakPassword       = apperr.InvalidArgument("password should be at least 6 characters")
	ErrInvalidEmail       = apperr.InvalidArgument("email address is invalid")
	ErrInvalidToken       = apperr.New(apperr.KindUnauthenticated, "invalid or expired token")
)

package auth

import apperrors "github.com/kislikjeka/fintrack/internal/shared/errors"

var (
	ErrMissingPassword    = apperrors.Validation("password is required")
	ErrInvalidCredentials = apperrors.Unauthorized("invalid credentials")
	ErrInvalidToken       = apperrors.Unauthorized("invalid or expired token")
	ErrWeakSecret         = apperrors.Validation("jwt secret must be at least 32 characters")
)

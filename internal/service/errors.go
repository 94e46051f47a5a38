package service

import (
	apperrors "github.com/debate-club/portal/internal/errors"
)

func failureResult(err error) LoginResult {
	return LoginResult{
		Message: apperrors.UserMessage(err, defaultLoginFailure),
		Field:   apperrors.GetField(err),
	}
}

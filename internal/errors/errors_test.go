package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "event not found",
			},
			want: "event not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeBackend,
				Message: "club API unavailable",
				Cause:   errors.New("connection refused"),
			},
			want: "club API unavailable: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
		msg  string
	}{
		{"not found", NotFound("missing"), ErrCodeNotFound, "missing"},
		{"not foundf", NotFoundf("event %s not found", "e1"), ErrCodeNotFound, "event e1 not found"},
		{"conflict", Conflict("email taken"), ErrCodeConflict, "email taken"},
		{"validation", Validation("bad input"), ErrCodeValidation, "bad input"},
		{"validationf", Validationf("%d errors", 2), ErrCodeValidation, "2 errors"},
		{"unauthenticated", Unauthenticated("Invalid credentials"), ErrCodeUnauthenticated, "Invalid credentials"},
		{"forbidden", Forbidden("Access denied"), ErrCodeForbidden, "Access denied"},
		{"backend", Backend("upstream failed"), ErrCodeBackend, "upstream failed"},
		{"internal", Internal("boom"), ErrCodeInternal, "boom"},
		{"percent without args is literal", Internal("100% broken"), ErrCodeInternal, "100% broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.Message != tt.msg {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.msg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("email", "Enter a valid email address")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if err.Field != "email" {
		t.Errorf("ValidationField().Field = %v, want email", err.Field)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(cause, ErrCodeBackend, "club API unavailable")

	if err.Code != ErrCodeBackend {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeBackend)
	}
	if !errors.Is(err, cause) {
		t.Error("Wrap() should preserve cause for errors.Is")
	}

	if Wrap(nil, ErrCodeInternal, "ignored") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, ErrCodeInternal, "ignored %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
	if got := Wrapf(cause, ErrCodeTimeout, "after %ds", 10).Message; got != "after 10s" {
		t.Errorf("Wrapf().Message = %q", got)
	}
}

func TestIsHelpers(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", Unauthenticated("Invalid credentials"))

	if !IsUnauthenticated(wrapped) {
		t.Error("IsUnauthenticated should see through fmt.Errorf wrapping")
	}
	if IsForbidden(wrapped) {
		t.Error("IsForbidden should be false for unauthenticated errors")
	}
	if !IsForbidden(Forbidden("no")) || !IsBackend(Backend("x")) || !IsNotFound(NotFound("x")) {
		t.Error("Is helpers should match their own codes")
	}
	if !IsConflict(Conflict("x")) || !IsValidation(Validation("x")) || !IsInternal(Internal("x")) {
		t.Error("Is helpers should match their own codes")
	}
	if !IsTimeout(&AppError{Code: ErrCodeTimeout}) || !IsCanceled(&AppError{Code: ErrCodeCanceled}) {
		t.Error("Is helpers should match their own codes")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("plain errors carry no code")
	}
}

func TestGetCodeAndField(t *testing.T) {
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode(plain) should be empty")
	}
	err := fmt.Errorf("outer: %w", ValidationField("name", "required"))
	if GetCode(err) != ErrCodeValidation {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if GetField(err) != "name" {
		t.Errorf("GetField() = %v", GetField(err))
	}
	if GetField(errors.New("plain")) != "" {
		t.Error("GetField(plain) should be empty")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Unauthenticated("Invalid credentials"), "Login failed"); got != "Invalid credentials" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("dial tcp"), "Login failed"); got != "Login failed" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(&AppError{Code: ErrCodeBackend}, "Try again"); got != "Try again" {
		t.Errorf("UserMessage() = %q", got)
	}
}

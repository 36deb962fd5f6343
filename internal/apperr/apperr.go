// Package apperr is the closed error catalog shared by every engine. Store
// and network failures get mapped into it at the engine boundary; raw errors
// never cross into callers.
package apperr

import (
	"encoding/json"
	"fmt"
)

// Error carries a stable code, a message safe to show a user, and an optional
// debug message meant only for logs.
type Error struct {
	Code         string
	UserMessage  string
	DebugMessage string
}

func (e *Error) Error() string {
	if e.DebugMessage == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.UserMessage)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.UserMessage, e.DebugMessage)
}

// Is matches errors by code so wrapped catalog entries still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	UserNotFound = &Error{
		Code:         "AUTH_001",
		UserMessage:  "User account not found. Please check your email or register.",
		DebugMessage: "no user found with provided email",
	}
	InvalidPassword = &Error{
		Code:         "AUTH_002",
		UserMessage:  "Incorrect password. Please try again.",
		DebugMessage: "password mismatch for existing user",
	}
	EmailAlreadyRegistered = &Error{
		Code:         "AUTH_003",
		UserMessage:  "This email is already registered. Please login instead.",
		DebugMessage: "attempted to register with existing email",
	}
	DatabaseConnection = &Error{
		Code:         "DB_001",
		UserMessage:  "Database error. Please try again.",
		DebugMessage: "failed to reach the local store",
	}
	UserCreationFailed = &Error{
		Code:         "DB_002",
		UserMessage:  "Failed to create account. Please try again.",
		DebugMessage: "user row insertion failed",
	}
	EmptyFields = &Error{
		Code:         "VAL_001",
		UserMessage:  "Please fill in all required fields.",
		DebugMessage: "required fields are empty",
	}
	InvalidEmailFormat = &Error{
		Code:         "VAL_002",
		UserMessage:  "Please enter a valid email address.",
		DebugMessage: "email format validation failed",
	}
	PasswordMismatch = &Error{
		Code:         "VAL_003",
		UserMessage:  "Passwords do not match.",
		DebugMessage: "password and confirm password differ",
	}
	NetworkUnavailable = &Error{
		Code:         "NET_001",
		UserMessage:  "No internet connection. Please check your network.",
		DebugMessage: "network connectivity issue",
	}
	Unknown = &Error{
		Code:         "GEN_001",
		UserMessage:  "An unexpected error occurred. Please try again.",
		DebugMessage: "unknown error",
	}
)

var catalog = map[string]*Error{
	UserNotFound.Code:           UserNotFound,
	InvalidPassword.Code:        InvalidPassword,
	EmailAlreadyRegistered.Code: EmailAlreadyRegistered,
	DatabaseConnection.Code:     DatabaseConnection,
	UserCreationFailed.Code:     UserCreationFailed,
	EmptyFields.Code:            EmptyFields,
	InvalidEmailFormat.Code:     InvalidEmailFormat,
	PasswordMismatch.Code:       PasswordMismatch,
	NetworkUnavailable.Code:     NetworkUnavailable,
	Unknown.Code:                Unknown,
}

// Custom builds an ad hoc error for cases outside the closed catalog, like
// HTTP status failures ("HTTP_502") or engine-specific codes ("DB_LOGIN_001").
func Custom(code, userMessage, debugMessage string) *Error {
	return &Error{
		Code:         code,
		UserMessage:  userMessage,
		DebugMessage: debugMessage,
	}
}

// WithDebug copies a catalog entry and attaches extra debug detail, leaving
// the shared entry untouched.
func WithDebug(base *Error, debugMessage string) *Error {
	return &Error{
		Code:         base.Code,
		UserMessage:  base.UserMessage,
		DebugMessage: debugMessage,
	}
}

// FromCode resolves a stable code back to its catalog entry. Unrecognized
// codes resolve to Unknown.
func FromCode(code string) *Error {
	if e, ok := catalog[code]; ok {
		return e
	}
	return Unknown
}

type transport struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Debug   string `json:"debug,omitempty"`
}

func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(transport{
		Code:    e.Code,
		Message: e.UserMessage,
		Debug:   e.DebugMessage,
	})
}

func (e *Error) UnmarshalJSON(byts []byte) error {
	t := transport{}
	if err := json.Unmarshal(byts, &t); err != nil {
		return err
	}

	e.Code = t.Code
	e.UserMessage = t.Message
	e.DebugMessage = t.Debug
	return nil
}

package api

import "fmt"

// Error is the JSON error envelope every failing handler returns
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

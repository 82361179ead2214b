package response

import (
	"errors"
	"fmt"
	"net/http"
	"tgadmin/entity"
)

// Response is the status/message envelope returned by command endpoints.
type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message,omitempty"`
}

func Ok(message string) Response {
	return Response{
		Status:  true,
		Message: message,
	}
}

func Error(message string) Response {
	return Response{
		Status:  false,
		Message: message,
	}
}

// FromError maps domain errors to an HTTP status and a client-safe envelope.
// Unknown errors become a generic 500.
func FromError(err error) (int, Response) {
	var validationErr *entity.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, Error(validationErr.Message)
	case errors.Is(err, entity.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error("Invalid credentials")
	case errors.Is(err, entity.ErrWrongPassword):
		return http.StatusUnauthorized, Error("Current password is incorrect")
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden, Error("Forbidden")
	case errors.Is(err, entity.ErrAdminNotFound):
		return http.StatusNotFound, Error("Admin not found")
	case errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound, Error("User not found")
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound, Error("Not found")
	default:
		return http.StatusInternalServerError, Error("Server error")
	}
}

// BindError describes a request body that failed to decode or validate.
func BindError(err error) Response {
	var validationErr *entity.ValidationError
	if errors.As(err, &validationErr) {
		return Error(validationErr.Message)
	}
	return Error(fmt.Sprintf("Invalid request: %v", err))
}

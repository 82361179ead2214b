package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"tgadmin/entity"

	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", entity.Invalid("Password must be at least 6 characters"), http.StatusBadRequest, "Password must be at least 6 characters"},
		{"credentials", entity.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"wrong password", entity.ErrWrongPassword, http.StatusUnauthorized, "Current password is incorrect"},
		{"forbidden", entity.ErrForbidden, http.StatusForbidden, "Forbidden"},
		{"admin wrapped", fmt.Errorf("get admin: %w", entity.ErrAdminNotFound), http.StatusNotFound, "Admin not found"},
		{"user", entity.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "Server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := FromError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.False(t, resp.Status)
			assert.Equal(t, tc.message, resp.Message)
		})
	}
}

func TestBindError(t *testing.T) {
	assert.Equal(t, Error("All password fields are required"), BindError(entity.Invalid("All password fields are required")))
	assert.Equal(t, Error("Invalid request: EOF"), BindError(errors.New("EOF")))
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "Valid password",
			password: "clerk2024",
			wantErr:  false,
		},
		{
			name:     "Too short",
			password: "ab1",
			wantErr:  true,
			errMsg:   "password must be at least 8 characters long",
		},
		{
			name:     "Missing digit",
			password: "onlyletters",
			wantErr:  true,
			errMsg:   "password must contain at least one number",
		},
		{
			name:     "Missing letter",
			password: "1234567890",
			wantErr:  true,
			errMsg:   "password must contain at least one letter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestEnvVarName_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   EnvVarName
		wantErr bool
	}{
		{"upper snake", "DATABASE_URL", false},
		{"lower case", "api_key", false},
		{"dotted", "app.name", false},
		{"single letter", "A", false},
		{"empty", "", true},
		{"contains equals", "A=B", true},
		{"contains space", "MY VAR", true},
		{"contains tab", "MY\tVAR", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("EnvVarName(%q).Validate() error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidEnvVarName) {
				t.Errorf("error should wrap ErrInvalidEnvVarName, got: %v", err)
			}
			var nameErr *InvalidEnvVarNameError
			if !errors.As(err, &nameErr) {
				t.Errorf("error should be *InvalidEnvVarNameError, got: %T", err)
			}
		})
	}
}

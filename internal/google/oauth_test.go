package google

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAccountName(t *testing.T) {
	tests := []struct {
		name    string
		account string
		wantErr bool
	}{
		{name: "default account", account: "default", wantErr: false},
		{name: "alphanumeric", account: "work2", wantErr: false},
		{name: "hyphen and underscore", account: "work-account_1", wantErr: false},
		{name: "empty", account: "", wantErr: true},
		{name: "path traversal", account: "../etc/passwd", wantErr: true},
		{name: "spaces", account: "my account", wantErr: true},
		{name: "slash", account: "a/b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAccountName(tt.account)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetTokenFilePath(t *testing.T) {
	path, err := GetTokenFilePath("default")
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "google-default.token"))
	assert.Contains(t, path, "inboxtasks")

	_, err = GetTokenFilePath("bad name")
	assert.Error(t, err)
}

func TestHasTokenForAccount(t *testing.T) {
	assert.False(t, HasTokenForAccount("invalid account"))
	assert.False(t, HasTokenForAccount(""))
}

func TestGetAuthenticationErrorMessage(t *testing.T) {
	msg := GetAuthenticationErrorMessage("work")
	assert.Contains(t, msg, "work")
	assert.Contains(t, msg, "inboxtasks auth")
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestComparePassword(t *testing.T) {
	argonHash, err := hashPassword("password123")
	require.NoError(t, err)

	bcryptHash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  bool
	}{
		{name: "argon2id match", password: "password123", hash: argonHash, want: true},
		{name: "argon2id mismatch", password: "wrong", hash: argonHash},
		{name: "bcrypt match", password: "password123", hash: string(bcryptHash), want: true},
		{name: "bcrypt mismatch", password: "wrong", hash: string(bcryptHash)},
		{name: "garbage hash", password: "password123", hash: "plain", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := comparePassword(tt.password, tt.hash)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker(secretKey, tokenTTL)

	tests := []struct {
		name     string
		username string
		role     string
	}{
		{
			name:     "admin user",
			username: "admin",
			role:     "admin",
		},
		{
			name:     "user with email username",
			username: "user@domain.com",
			role:     "admin",
		},
		{
			name:     "user with numbers in username",
			username: "operator123",
			role:     "admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.username, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.role, claims.Role)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	maker := NewJWTMaker("secret_one", time.Minute)
	other := NewJWTMaker("secret_two", time.Minute)

	tests := []struct {
		name  string
		token func() string
	}{
		{
			name:  "мусор вместо токена",
			token: func() string { return "not.a.token" },
		},
		{
			name: "токен с чужой подписью",
			token: func() string {
				token, err := other.GenerateToken("admin", "admin")
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "просроченный токен",
			token: func() string {
				expired := NewJWTMaker("secret_one", -time.Minute)
				token, err := expired.GenerateToken("admin", "admin")
				require.NoError(t, err)
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token())
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

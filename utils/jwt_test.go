package utils

import (
	"testing"
	"time"

	"marketplace/config"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestConfig(t *testing.T) {
	t.Helper()
	prev := config.Cfg
	config.Cfg = &config.Configuration{
		JWTSecret:      "test-secret",
		JWTIssuer:      "marketplace-api",
		JWTTTL:         time.Hour,
		SMSCountryCode: "225",
		ShopName:       "ECEFA",
		MailFrom:       "no-reply@ecefa.com",
	}
	t.Cleanup(func() { config.Cfg = prev })
}

func TestTokenRoundTrip(t *testing.T) {
	withTestConfig(t)

	token, err := GenerateToken("abc123", "admin", "root")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "abc123", claims.ID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, "marketplace-api", claims.Issuer)
}

func TestValidateTokenRejects(t *testing.T) {
	withTestConfig(t)

	sign := func(claims *JWTClaim, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	valid := jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix(), Issuer: "marketplace-api"}

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ValidateToken(sign(&JWTClaim{ID: "x", StandardClaims: valid}, "other"))
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := valid
		expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
		_, err := ValidateToken(sign(&JWTClaim{ID: "x", StandardClaims: expired}, "test-secret"))
		assert.Error(t, err)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		foreign := valid
		foreign.Issuer = "someone-else"
		_, err := ValidateToken(sign(&JWTClaim{ID: "x", StandardClaims: foreign}, "test-secret"))
		assert.EqualError(t, err, "invalid token issuer")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.NoError(t, VerifyPassword(hash, "s3cret"))
	assert.Error(t, VerifyPassword(hash, "wrong"))
}

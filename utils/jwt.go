package utils

import (
	"errors"
	"time"

	"marketplace/config"

	"github.com/dgrijalva/jwt-go"
)

type JWTClaim struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username"`
	jwt.StandardClaims
}

func GenerateToken(id, role, username string) (string, error) {
	expirationTime := time.Now().Add(config.Cfg.JWTTTL)
	claims := &JWTClaim{
		ID:       id,
		Role:     role,
		Username: username,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    config.Cfg.JWTIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Cfg.JWTSecret))
}

func ValidateToken(signedToken string) (*JWTClaim, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&JWTClaim{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(config.Cfg.JWTSecret), nil
		},
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaim)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if !claims.VerifyIssuer(config.Cfg.JWTIssuer, true) {
		return nil, errors.New("invalid token issuer")
	}

	return claims, nil
}

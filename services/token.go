package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

type TokenClaims struct {
	UserID    string
	Type      string
	ExpiresAt time.Time
}

func NewTokenIssuer(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		Secret:     []byte(secret),
		Issuer:     issuer,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Now:        time.Now,
	}
}

func (ti *TokenIssuer) GenerateToken(userID string) (string, error) {
	return ti.sign(userID, tokenTypeAccess, ti.AccessTTL)
}

func (ti *TokenIssuer) GenerateRefreshToken(userID string) (string, error) {
	return ti.sign(userID, tokenTypeRefresh, ti.RefreshTTL)
}

func (ti *TokenIssuer) sign(userID, tokenType string, ttl time.Duration) (string, error) {
	now := ti.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"type":    tokenType,
		"iss":     ti.Issuer,
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
		"jti":     uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates signature, issuer, expiry and type.
func (ti *TokenIssuer) ParseAccessToken(tokenString string) (*TokenClaims, error) {
	claims, err := ti.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeAccess {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}

func (ti *TokenIssuer) ParseRefreshToken(tokenString string) (*TokenClaims, error) {
	claims, err := ti.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenTypeRefresh {
		return nil, errors.New("invalid token type")
	}
	return claims, nil
}

func (ti *TokenIssuer) parse(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ti.Secret, nil
	},
		jwt.WithIssuer(ti.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.Now),
	)
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, _ := mapClaims["user_id"].(string)
	if userID == "" {
		return nil, errors.New("invalid user ID in token")
	}
	tokenType, _ := mapClaims["type"].(string)

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, errors.New("invalid expiration")
	}

	return &TokenClaims{UserID: userID, Type: tokenType, ExpiresAt: exp.Time}, nil
}

package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"church-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrWrongTokenType  = errors.New("unexpected token type")
	ErrEmptySigningKey = errors.New("jwt signing key is empty")
)

// AccountClaims represents the JWT claims for an authenticated account
type AccountClaims struct {
	AccountID       uuid.UUID  `json:"account_id"`
	Email           string     `json:"email"`
	TenantID        *uuid.UUID `json:"tenant_id,omitempty"`
	IsPlatformAdmin bool       `json:"is_platform_admin"`
	TokenType       string     `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is returned by login, registration and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Subject is the identity encoded into a token pair.
type Subject struct {
	AccountID       uuid.UUID
	Email           string
	TenantID        *uuid.UUID
	IsPlatformAdmin bool
}

// JWTUtil signs and validates HS256 tokens.
type JWTUtil struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func New(cfg config.JWTConfig) *JWTUtil {
	return &JWTUtil{
		secret:     []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

func (j *JWTUtil) RefreshTTL() time.Duration {
	return j.refreshTTL
}

// GeneratePair issues an access and a refresh token for the subject.
func (j *JWTUtil) GeneratePair(sub Subject) (*TokenPair, error) {
	access, err := j.generate(sub, TokenTypeAccess, j.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := j.generate(sub, TokenTypeRefresh, j.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func (j *JWTUtil) generate(sub Subject, tokenType string, ttl time.Duration) (string, error) {
	if len(j.secret) == 0 {
		return "", ErrEmptySigningKey
	}
	now := j.now()
	claims := AccountClaims{
		AccountID:       sub.AccountID,
		Email:           sub.Email,
		TenantID:        sub.TenantID,
		IsPlatformAdmin: sub.IsPlatformAdmin,
		TokenType:       tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			Subject:   sub.AccountID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateToken parses tokenString and checks it is of the expected type.
func (j *JWTUtil) ValidateToken(tokenString, expectedType string) (*AccountClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccountClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AccountClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.TokenType != expectedType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

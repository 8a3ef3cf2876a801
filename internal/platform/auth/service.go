package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	// Subject is the only principal tokens are issued to
	Subject = "owner"
	// Issuer is set on every token
	Issuer = "fintrack"
	// TokenTTL is the lifetime of an issued token
	TokenTTL = 24 * time.Hour

	minSecretLength = 32
)

// Claims represents the JWT claims
type Claims struct {
	jwt.RegisteredClaims
}

// Token is a signed token and its expiry
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Service authenticates the single operator and issues HS256 tokens
type Service struct {
	secret       []byte
	passwordHash []byte
	now          func() time.Time
}

// NewService creates a new auth service. passwordHash is a bcrypt hash.
func NewService(secret, passwordHash string) (*Service, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}
	return &Service{
		secret:       []byte(secret),
		passwordHash: []byte(passwordHash),
		now:          time.Now,
	}, nil
}

// HashPassword returns a bcrypt hash suitable for OWNER_PASSWORD_HASH
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrMissingPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// IssueToken checks the operator password and signs a token
func (s *Service) IssueToken(password string) (*Token, error) {
	if password == "" {
		return nil, ErrMissingPassword
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(TokenTTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   Subject,
			Issuer:    Issuer,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Token{AccessToken: signed, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}

// Validate parses a token and checks signature, expiry and subject
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithSubject(Subject),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

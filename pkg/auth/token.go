// pkg/auth/token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenManager выпускает и проверяет сессионные JWT.
type TokenManager interface {
	Generate(userID string, role string) (string, error)
	Validate(tokenString string) (*Claims, error)
}

// jwtManager реализует TokenManager (HS256).
type jwtManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	issuer        string
	now           func() time.Time
}

// Claims определяет данные, хранимые в JWT.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Option настраивает jwtManager.
type Option func(*jwtManager)

// WithIssuer задает поле iss выпускаемых токенов.
func WithIssuer(issuer string) Option {
	return func(m *jwtManager) { m.issuer = issuer }
}

// WithClock подменяет источник времени (для тестов истечения).
func WithClock(now func() time.Time) Option {
	return func(m *jwtManager) { m.now = now }
}

// NewTokenManager создает jwtManager. tokenDuration - например, 24 часа.
func NewTokenManager(secretKey string, tokenDuration time.Duration, opts ...Option) (TokenManager, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("JWT secret key cannot be empty")
	}
	if tokenDuration <= 0 {
		return nil, fmt.Errorf("JWT token duration must be positive, got %s", tokenDuration)
	}
	m := &jwtManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		issuer:        "arabfilms",
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Generate создает новый JWT для пользователя с указанной ролью.
func (m *jwtManager) Generate(userID string, role string) (string, error) {
	issuedAt := m.now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    m.issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate проверяет подпись и срок действия токена и возвращает его Claims.
func (m *jwtManager) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrMalformedToken   = errors.New("token is malformed")
)

// Principal is the verified identity carried by a session token.
type Principal struct {
	SubjectID uint64
	Role      models.Role
	CompanyID uint64
	ExpiresAt time.Time
}

// Claims is the identity asserted when a token is issued.
type Claims struct {
	SubjectID uint64
	Role      models.Role
	CompanyID uint64
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	CompanyID uint64 `json:"company_id"`
}

// TokenCodec signs and verifies session tokens with a symmetric secret.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec builds a codec for an HMAC algorithm such as HS256.
func NewTokenCodec(secret, algorithm string, ttl time.Duration) (*TokenCodec, error) {
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenCodec{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Encode issues a token for claims, expiring TTL from now.
func (c *TokenCodec) Encode(claims Claims) (string, time.Time, error) {
	issuedAt := c.now()
	expiresAt := issuedAt.Add(c.ttl)

	token := jwt.NewWithClaims(c.method, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(claims.SubjectID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role:      string(claims.Role),
		CompanyID: claims.CompanyID,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Decode verifies signature and expiry and returns the asserted principal.
func (c *TokenCodec) Decode(token string) (Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &tokenClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Principal{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Principal{}, ErrInvalidSignature
		default:
			return Principal{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}
	if !parsed.Valid {
		return Principal{}, ErrInvalidSignature
	}

	subjectID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || subjectID == 0 {
		return Principal{}, fmt.Errorf("%w: subject claim required", ErrMalformedToken)
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.CompanyID == 0 {
		return Principal{}, fmt.Errorf("%w: company claim required", ErrMalformedToken)
	}

	return Principal{
		SubjectID: subjectID,
		Role:      role,
		CompanyID: claims.CompanyID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

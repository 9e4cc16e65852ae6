package constants

import "time"

// Context keys
const (
	ContextKeyPrincipal = "principal"
)

// AccessTokenCookieName is the cookie carrying the signed session token.
const AccessTokenCookieName = "access_token"

// Validation limits
const (
	MinUsernameLength  = 3
	MaxUsernameLength  = 50
	MinPasswordLength  = 6
	MinTaskTitleLength = 3
)

// MaxPasswordLength is bcrypt's input limit, counted in bytes.
const MaxPasswordLength = 72

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Token and hashing defaults
const (
	DefaultTokenTTL     = 30 * time.Minute
	DefaultJWTAlgorithm = "HS256"
	DefaultBcryptCost   = 12
)

// MaxAIGeneratedTasks caps the number of suggestions returned by the assistant.
const MaxAIGeneratedTasks = 20

package authsdk

import "time"

// ============================================================================
// Envelope
// ============================================================================

// Envelope wraps every JSON response the service writes. Success responses
// carry Data, failures carry Error.
type Envelope[T any] struct {
	Success   bool       `json:"success"`
	Code      int        `json:"code"`
	Message   string     `json:"message"`
	Data      T          `json:"data,omitempty"`
	Error     *ErrorBody `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Path      string     `json:"path"`
}

// ErrorBody is the machine readable part of a failed response.
type ErrorBody struct {
	// Code is one of the ErrorCode* constants.
	Code string `json:"code"`

	// Details holds internal error text. Only populated in development mode.
	Details string `json:"details,omitempty"`

	ValidationErrors []FieldError `json:"validationErrors,omitempty"`
}

// FieldError describes why a single request field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ============================================================================
// Account Types
// ============================================================================

// Account is the public view of an account. It never carries the password
// digest.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ============================================================================
// Request Types
// ============================================================================

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`

	// BotToken is passed to the bot verification gate when present.
	BotToken string `json:"botToken,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	BotToken string `json:"botToken,omitempty"`
}

// RefreshRequest is the optional body of POST /api/auth/refresh and
// POST /api/auth/logout. Browsers leave it empty and rely on the cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ============================================================================
// Response Types
// ============================================================================

// AuthResponse is returned by register, login and refresh. Account is only
// set for register and login. The rotation credential travels in the
// refresh_token cookie, never in the body.
type AuthResponse struct {
	Account *Account `json:"account,omitempty"`

	AccessToken string `json:"accessToken"`

	// ExpiresIn is the bearer token lifetime in seconds.
	ExpiresIn int `json:"expiresIn"`
}

// LogoutResponse is the always-empty body of a logout.
type LogoutResponse struct{}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Accounts is the account store status.
	Accounts string `json:"accounts"`

	// Sessions is the session backend status.
	Sessions string `json:"sessions"`
}

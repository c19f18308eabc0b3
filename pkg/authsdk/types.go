package authsdk

import "encoding/json"

// Mode names accepted by the service.
const (
	ModeStateless = "stateless"
	ModeHybrid    = "hybrid"
	ModeSession   = "session"
)

// Cookie names, one per mode.
const (
	CookieToken        = "token"
	CookieRefreshToken = "refreshToken"
	CookieSession      = "sid"
)

// CookieForMode returns the cookie that carries mode's credential.
func CookieForMode(mode string) string {
	switch mode {
	case ModeStateless:
		return CookieToken
	case ModeHybrid:
		return CookieRefreshToken
	case ModeSession:
		return CookieSession
	default:
		return ""
	}
}

// Credentials is the body of register and login.
type Credentials struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"pw123456"`
	Mode     string `json:"mode" example:"hybrid" enums:"stateless,hybrid,session"`
}

// LogoutRequest is the body of logout.
type LogoutRequest struct {
	Mode string `json:"mode" example:"session" enums:"stateless,hybrid,session"`
}

// Envelope wraps every response. Data is the payload when Error is false
// and a reason string when it is true.
type Envelope struct {
	Data  json.RawMessage `json:"data" swaggertype:"object"`
	Error bool            `json:"error"`
}

// AuthData is returned by register and login. AccessToken is only set in
// hybrid mode.
type AuthData struct {
	Email       string `json:"email" example:"a@x.com"`
	AccessToken string `json:"accessToken,omitempty"`
}

// AccessData is returned by refresh.
type AccessData struct {
	AccessToken string `json:"accessToken"`
}

// UserData is returned by the identity endpoints.
type UserData struct {
	Email string `json:"email" example:"a@x.com"`
}

// Resource is one item of the demo resource listing.
type Resource struct {
	ID   int    `json:"id" example:"42"`
	Name string `json:"name" example:"Resource 1"`
}

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
	// Database indicates the user store connection status
	Database string `json:"database"`

	// Sessions indicates the session backend status
	Sessions string `json:"sessions"`
}

package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
)

// SessionCookie is the cookie holding the admin token. jwtauth.Verifier
// reads the same name.
const SessionCookie = "jwt"

// DefaultSessionTTL is how long an admin token stays valid.
const DefaultSessionTTL = 12 * time.Hour

// AuthConfig configures the admin session gate
type AuthConfig struct {
	// PasswordSHA256 is the hex SHA-256 digest of the admin password
	PasswordSHA256 string
	Secret         string
	TTL            time.Duration
	// SecureCookie marks the session cookie Secure
	SecureCookie bool
}

// Auth issues and checks admin session tokens. It gates the admin screens
// and is not meant as a strong security boundary.
type Auth struct {
	tokens *jwtauth.JWTAuth
	digest []byte
	config AuthConfig
}

// NewAuth creates the session gate
func NewAuth(config AuthConfig) (*Auth, error) {
	if config.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	digest, err := hex.DecodeString(strings.TrimSpace(config.PasswordSHA256))
	if err != nil || len(digest) != sha256.Size {
		return nil, errors.New("admin password must be a hex SHA-256 digest")
	}
	if config.TTL <= 0 {
		config.TTL = DefaultSessionTTL
	}
	return &Auth{
		tokens: jwtauth.New("HS256", []byte(config.Secret), nil),
		digest: digest,
		config: config,
	}, nil
}

// HashPassword returns the hex SHA-256 digest accepted by AuthConfig.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (a *Auth) checkPassword(password string) bool {
	sum := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(sum[:], a.digest) == 1
}

// LoginRequest is the body of POST /admin/login
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse carries the token for clients that cannot keep cookies
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges the admin password for a session token, set both as a
// cookie and in the body.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if !a.checkPassword(req.Password) {
		writeUnauthorized(w, r)
		return
	}

	expires := time.Now().Add(a.config.TTL)
	claims := map[string]interface{}{"sub": "admin"}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiry(claims, expires)
	_, token, err := a.tokens.Encode(claims)
	if err != nil {
		writeError(w, r, fmt.Errorf("issue token: %w", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.config.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	render.JSON(w, r, LoginResponse{Token: token, ExpiresAt: expires.UTC()})
}

// Logout clears the session cookie
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.config.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Verifier finds and verifies a token in the Authorization header or the
// session cookie.
func (a *Auth) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(a.tokens)
}

// Authenticator rejects requests whose token is missing or invalid.
func (a *Auth) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			writeUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

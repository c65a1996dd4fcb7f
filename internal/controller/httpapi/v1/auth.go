// Package v1 implements the v1 HTTP routes.
package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for any credential that does not resolve to a
// principal.
var ErrUnauthorized = errors.New("unauthorized")

const (
	_principalKey = "principal"
	_adminKey     = "admin"

	_adminRole = "admin"
)

// AuthConfig selects how controller credentials are verified. With an OIDC
// issuer configured tokens are verified against it; otherwise a shared HS256
// secret is used.
type AuthConfig struct {
	Disabled     bool
	JWTSecret    string
	OIDCIssuer   string
	OIDCClientID string
}

// Auth verifies controller credentials for both the HTTP API and the
// websocket endpoint.
type Auth struct {
	cfg      AuthConfig
	verifier *oidc.IDTokenVerifier
}

// NewAuth -.
func NewAuth(ctx context.Context, cfg AuthConfig) (*Auth, error) {
	a := &Auth{cfg: cfg}

	if cfg.OIDCIssuer != "" {
		provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
		if err != nil {
			return nil, fmt.Errorf("httpapi - NewAuth - oidc.NewProvider: %w", err)
		}

		a.verifier = provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})
	}

	return a, nil
}

// accessClaims carries the roles claim alongside the registered set. Only the
// "admin" role is meaningful to the gateway.
type accessClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

func (c accessClaims) isAdmin() bool {
	for _, role := range c.Roles {
		if role == _adminRole {
			return true
		}
	}

	return false
}

// Authenticate resolves a bearer credential to a controller principal id.
func (a *Auth) Authenticate(ctx context.Context, token string) (string, error) {
	principal, _, err := a.authenticate(ctx, token)

	return principal, err
}

func (a *Auth) authenticate(ctx context.Context, token string) (string, bool, error) {
	if a.cfg.Disabled {
		return "local-admin", true, nil
	}

	if token == "" {
		return "", false, ErrUnauthorized
	}

	if a.verifier != nil {
		idToken, err := a.verifier.Verify(ctx, token)
		if err != nil {
			return "", false, ErrUnauthorized
		}

		var claims accessClaims
		if err := idToken.Claims(&claims); err != nil {
			return "", false, ErrUnauthorized
		}

		return idToken.Subject, claims.isAdmin(), nil
	}

	return a.verifyHS256(token)
}

func (a *Auth) verifyHS256(token string) (string, bool, error) {
	claims := accessClaims{}

	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthorized
		}

		return []byte(a.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", false, ErrUnauthorized
	}

	return claims.Subject, claims.isAdmin(), nil
}

// Middleware guards HTTP routes and stashes the principal in the request
// context.
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if after, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
			token = after
		}

		principal, admin, err := a.authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response{"unauthorized"})

			return
		}

		c.Set(_principalKey, principal)
		c.Set(_adminKey, admin)
		c.Next()
	}
}

// RequireAdmin rejects principals whose credential does not carry the admin
// role. It must run after Middleware.
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(_adminKey) {
			c.AbortWithStatusJSON(http.StatusForbidden, response{"forbidden"})

			return
		}

		c.Next()
	}
}

// Principal returns the authenticated principal set by Middleware.
func Principal(c *gin.Context) string {
	return c.GetString(_principalKey)
}

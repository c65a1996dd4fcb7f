// Package identity issues and verifies device tokens: the bearer credential a
// display presents to resume its session after a restart without re-pairing.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/signage-toolkit/gateway/pkg/gatewayerrors"
)

var (
	ErrInvalidToken = errors.New("invalid device token")
	ErrExpiredToken = errors.New("expired device token")
	ErrRevokedToken = errors.New("revoked device token")

	errIdentity = gatewayerrors.CreateError("IdentityUseCase")
)

const _issuer = "signage-gateway"

// RevocationStore is the shared list of revoked display identities.
type RevocationStore interface {
	Revoke(ctx context.Context, displayID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, displayID string) (bool, error)
}

// UseCase -.
type UseCase struct {
	signingKey  []byte
	tokenTTL    time.Duration
	revocations RevocationStore
}

// New -.
func New(signingKey string, tokenTTL time.Duration, revocations RevocationStore) *UseCase {
	if tokenTTL <= 0 {
		tokenTTL = 180 * 24 * time.Hour
	}

	return &UseCase{
		signingKey:  []byte(signingKey),
		tokenTTL:    tokenTTL,
		revocations: revocations,
	}
}

// Issue mints a device token bound to the display identity, not to any
// particular session.
func (uc *UseCase) Issue(displayID string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    _issuer,
		Subject:   displayID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(uc.tokenTTL)),
	})

	signed, err := token.SignedString(uc.signingKey)
	if err != nil {
		return "", errIdentity.Wrap("Issue", "token.SignedString", err)
	}

	return signed, nil
}

// Verify validates a presented token and returns the display identity it is
// bound to.
func (uc *UseCase) Verify(ctx context.Context, token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return uc.signingKey, nil
	}, jwt.WithIssuer(_issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}

		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	revoked, err := uc.revocations.IsRevoked(ctx, claims.Subject)
	if err != nil {
		return "", errIdentity.Wrap("Verify", "revocations.IsRevoked", err)
	}

	if revoked {
		return "", ErrRevokedToken
	}

	return claims.Subject, nil
}

// Revoke bars the display identity from ever resuming with existing tokens.
func (uc *UseCase) Revoke(ctx context.Context, displayID string) error {
	if err := uc.revocations.Revoke(ctx, displayID, uc.tokenTTL); err != nil {
		return errIdentity.Wrap("Revoke", "revocations.Revoke", err)
	}

	return nil
}

package fingerprint

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// CookieName is the cookie the server reads the device fingerprint from.
const CookieName = "hf_fp"

// TokenTTL is how long an issued fingerprint stays valid.
const TokenTTL = 365 * 24 * time.Hour

// TokenFunc returns the current fingerprint token, or "" when none exists.
type TokenFunc func() string

// TokenStore persists the device fingerprint. Token returns "" when no live
// token exists; SaveToken must never replace a live token.
type TokenStore interface {
	Token() (string, error)
	SaveToken(token string, expires time.Time) error
}

// Issuer guarantees a stable per-device abuse-prevention token.
type Issuer struct {
	store TokenStore
}

func NewIssuer(store TokenStore) *Issuer {
	return &Issuer{store: store}
}

// Ensure creates and persists a fingerprint if none exists. Idempotent: a
// live token is never regenerated or overwritten.
func (i *Issuer) Ensure() error {
	tok, err := i.store.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if tok != "" {
		return nil
	}

	tok, err = generate()
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	if err := i.store.SaveToken(tok, time.Now().Add(TokenTTL)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Token returns the persisted fingerprint, or "" if none exists. Errors are
// treated as absence; requests then simply go out uncookied.
func (i *Issuer) Token() string {
	tok, err := i.store.Token()
	if err != nil {
		return ""
	}
	return tok
}

// generate builds a token from a cryptographically strong source: four
// dash-joined unsigned 32-bit integers. Not PII; used for basic abuse
// prevention only.
func generate() (string, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d-%d-%d",
		binary.BigEndian.Uint32(buf[0:4]),
		binary.BigEndian.Uint32(buf[4:8]),
		binary.BigEndian.Uint32(buf[8:12]),
		binary.BigEndian.Uint32(buf[12:16]),
	), nil
}

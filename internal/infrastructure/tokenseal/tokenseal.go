// Package tokenseal encrypts credential tokens before they reach a shared
// store such as Redis or MongoDB.
package tokenseal

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/digitalwallet/wallet-web/internal/core/ports"
)

const (
	keySize   = 32
	nonceSize = 24
	info      = "wallet-web token seal v1"
)

var ErrOpen = errors.New("tokenseal: cannot open sealed token")

// Sealer seals values with XSalsa20-Poly1305 under a key derived from a secret.
type Sealer struct {
	key [keySize]byte
}

// NewSealer derives the sealing key from secret with HKDF-SHA256.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("tokenseal: empty secret")
	}
	s := &Sealer{}
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, fmt.Errorf("tokenseal: derive key: %w", err)
	}
	return s, nil
}

// Seal returns base64(nonce || box).
func (s *Sealer) Seal(value string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("tokenseal: read nonce: %w", err)
	}
	out := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}

// Store wraps a ports.TokenStore so tokens are sealed at rest.
type Store struct {
	next   ports.TokenStore
	sealer *Sealer
}

func NewStore(next ports.TokenStore, sealer *Sealer) *Store {
	return &Store{next: next, sealer: sealer}
}

// Load opens the stored value. A value that cannot be opened (rotated secret,
// tampering) is reported as absent so the session falls back to Anonymous.
func (s *Store) Load(ctx context.Context, sessionID string) (string, bool, error) {
	sealed, ok, err := s.next.Load(ctx, sessionID)
	if err != nil || !ok {
		return "", ok, err
	}
	token, err := s.sealer.Open(sealed)
	if err != nil {
		return "", false, nil
	}
	return token, true, nil
}

func (s *Store) Save(ctx context.Context, sessionID, token string) error {
	sealed, err := s.sealer.Seal(token)
	if err != nil {
		return err
	}
	return s.next.Save(ctx, sessionID, sealed)
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.next.Delete(ctx, sessionID)
}

// Package session owns the password-derived key for the local account. The
// key lives only in memory and is handed to operations through an explicit
// Session value.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/jask/finvault/internal/database/repository"
	"github.com/jask/finvault/internal/vault"
)

var (
	ErrNotAuthenticated = errors.New("session: not authenticated")
	ErrNoAccount        = errors.New("session: no account; run init first")
	ErrAccountExists    = errors.New("session: account already exists")
	ErrPasswordTooShort = errors.New("session: password too short")
)

// Session carries the active encryption key. The zero value and a nil
// *Session are both unauthenticated.
type Session struct {
	key *vault.Key
}

// New wraps an already derived key.
func New(key *vault.Key) *Session { return &Session{key: key} }

// Key returns the session key or ErrNotAuthenticated.
func (s *Session) Key() (*vault.Key, error) {
	if s == nil || s.key == nil {
		return nil, ErrNotAuthenticated
	}
	return s.key, nil
}

// Active reports whether the session holds a key.
func (s *Session) Active() bool { return s != nil && s.key != nil }

// Encrypt seals plain under the session key.
func (s *Session) Encrypt(plain string) (string, error) {
	k, err := s.Key()
	if err != nil {
		return "", err
	}
	return vault.Encrypt(plain, k)
}

// Decrypt opens payload with the session key.
func (s *Session) Decrypt(payload string) (string, error) {
	k, err := s.Key()
	if err != nil {
		return "", err
	}
	return vault.Decrypt(payload, k)
}

func (s *Session) close() {
	if s == nil || s.key == nil {
		return
	}
	s.key.Wipe()
	s.key = nil
}

// MetaStore is the account metadata the manager persists.
type MetaStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	PutIfAbsent(ctx context.Context, key, value string) (bool, error)
}

// Manager creates and tracks the single authenticated session.
type Manager struct {
	Meta              MetaStore
	Iterations        int
	MinPasswordLength int

	current *Session
}

// HasAccount reports whether Setup has completed.
func (m *Manager) HasAccount(ctx context.Context) (bool, error) {
	v, ok, err := m.Meta.Get(ctx, repository.MetaHasAccount)
	if err != nil {
		return false, err
	}
	return ok && v == "1", nil
}

// Setup creates the account: a salt is generated once and stored, then the
// session key is derived from password.
func (m *Manager) Setup(ctx context.Context, password string) (*Session, error) {
	has, err := m.HasAccount(ctx)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, ErrAccountExists
	}
	if utf8.RuneCountInString(password) < m.MinPasswordLength {
		return nil, fmt.Errorf("%w: need at least %d characters", ErrPasswordTooShort, m.MinPasswordLength)
	}

	salt, err := vault.NewSalt()
	if err != nil {
		return nil, err
	}
	// A salt left behind by an interrupted setup is reused.
	if _, err := m.Meta.PutIfAbsent(ctx, repository.MetaCryptoSalt, salt); err != nil {
		return nil, fmt.Errorf("store salt: %w", err)
	}
	if _, err := m.Meta.PutIfAbsent(ctx, repository.MetaKDFIterations, strconv.Itoa(m.iterations())); err != nil {
		return nil, fmt.Errorf("store kdf iterations: %w", err)
	}

	s, err := m.derive(ctx, password)
	if err != nil {
		return nil, err
	}
	if err := m.Meta.Put(ctx, repository.MetaHasAccount, "1"); err != nil {
		s.close()
		return nil, fmt.Errorf("mark account: %w", err)
	}
	m.replace(s)
	return s, nil
}

// Login derives the key from password and the stored salt. The password is
// not verified; a wrong one shows up as decryption failures.
func (m *Manager) Login(ctx context.Context, password string) (*Session, error) {
	has, err := m.HasAccount(ctx)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrNoAccount
	}
	s, err := m.derive(ctx, password)
	if err != nil {
		return nil, err
	}
	m.replace(s)
	return s, nil
}

// Logout wipes the current key.
func (m *Manager) Logout() {
	m.current.close()
	m.current = nil
}

// Current returns the active session or ErrNotAuthenticated.
func (m *Manager) Current() (*Session, error) {
	if !m.current.Active() {
		return nil, ErrNotAuthenticated
	}
	return m.current, nil
}

func (m *Manager) replace(s *Session) {
	if m.current != nil && m.current != s {
		m.current.close()
	}
	m.current = s
}

func (m *Manager) derive(ctx context.Context, password string) (*Session, error) {
	salt, ok, err := m.Meta.Get(ctx, repository.MetaCryptoSalt)
	if err != nil {
		return nil, err
	}
	if !ok || salt == "" {
		return nil, ErrNoAccount
	}

	iterations := m.iterations()
	if v, ok, err := m.Meta.Get(ctx, repository.MetaKDFIterations); err != nil {
		return nil, err
	} else if ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("stored kdf iterations %q are invalid", v)
		}
		iterations = n
	}

	key, err := vault.DeriveKey(password, salt, iterations)
	if err != nil {
		return nil, err
	}
	return New(key), nil
}

func (m *Manager) iterations() int {
	if m.Iterations > 0 {
		return m.Iterations
	}
	return vault.DefaultIterations
}

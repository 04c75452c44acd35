// Package store keeps the access token and the cached member profile
// between runs.
package store

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Fixed key names.
const (
	TokenKey = "auth_token"
	UserKey  = "user_info"
)

// Backend is a string key/value store.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// Store is the token and user store. Read failures are treated as absence.
type Store struct {
	b Backend
}

func New(b Backend) *Store {
	return &Store{b: b}
}

func (s *Store) SetToken(token string) error {
	if err := s.b.Set(TokenKey, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

func (s *Store) Token() string {
	v, ok, err := s.b.Get(TokenKey)
	if err != nil || !ok {
		return ""
	}
	return v
}

func (s *Store) HasToken() bool {
	return s.Token() != ""
}

func (s *Store) ClearToken() error {
	return s.b.Delete(TokenKey)
}

// SetUser stores v as JSON.
func (s *Store) SetUser(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := s.b.Set(UserKey, string(data)); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// User decodes the stored user into dst. It reports false when nothing is
// stored.
func (s *Store) User(dst any) (bool, error) {
	v, ok, err := s.b.Get(UserKey)
	if err != nil {
		return false, fmt.Errorf("reading user: %w", err)
	}
	if !ok || v == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		return false, fmt.Errorf("decoding user: %w", err)
	}
	return true, nil
}

func (s *Store) ClearUser() error {
	return s.b.Delete(UserKey)
}

// ClearAll removes both keys. Clearing an empty store is not an error.
func (s *Store) ClearAll() error {
	if err := s.b.Delete(TokenKey); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	if err := s.b.Delete(UserKey); err != nil {
		return fmt.Errorf("clearing user: %w", err)
	}
	return nil
}

// Memory is an in-process Backend.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

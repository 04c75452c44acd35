package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestTokenRoundTrip(t *testing.T) {
	s := New(NewMemory())
	assert.False(t, s.HasToken())
	assert.Equal(t, "", s.Token())

	require.NoError(t, s.SetToken("abc"))
	assert.True(t, s.HasToken())
	assert.Equal(t, "abc", s.Token())

	require.NoError(t, s.ClearToken())
	assert.False(t, s.HasToken())
}

func TestUserRoundTrip(t *testing.T) {
	s := New(NewMemory())

	var got profile
	ok, err := s.User(&got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetUser(profile{ID: "7", Name: "mina"}))
	ok, err = s.User(&got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, profile{ID: "7", Name: "mina"}, got)
}

func TestClearAllIsIdempotent(t *testing.T) {
	mem := NewMemory()
	s := New(mem)
	require.NoError(t, s.SetToken("abc"))
	require.NoError(t, s.SetUser(profile{Name: "mina"}))

	require.NoError(t, s.ClearAll())
	require.NoError(t, s.ClearAll())

	_, ok, _ := mem.Get(TokenKey)
	assert.False(t, ok)
	_, ok, _ = mem.Get(UserKey)
	assert.False(t, ok)
}

type failingBackend struct{ *Memory }

func (failingBackend) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }

func TestReadFailureLooksLikeNoToken(t *testing.T) {
	s := New(failingBackend{NewMemory()})
	assert.Equal(t, "", s.Token())
	_, err := s.User(&profile{})
	assert.Error(t, err)
}

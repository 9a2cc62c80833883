package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebump/tradebump/internal/types"
)

var validCreds = types.Credentials{
	Username:     "bumpmaster",
	EmailAddress: "bump@example.com",
	Password:     "s3cr3t pass",
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradebump", "credentials.yaml")
	s, err := NewFileStore("tradebump", path)
	require.NoError(t, err)

	require.NoError(t, s.Set(validCreds))

	// a fresh store reading the same file must see the identical triple
	s2, err := NewFileStore("tradebump", path)
	require.NoError(t, err)
	got, err := s2.Get()
	require.NoError(t, err)
	assert.Equal(t, validCreds, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreOverwrite(t *testing.T) {
	s, err := NewFileStore("tradebump", filepath.Join(t.TempDir(), "credentials.yaml"))
	require.NoError(t, err)

	require.NoError(t, s.Set(validCreds))
	updated := validCreds
	updated.Password = "another"
	require.NoError(t, s.Set(updated))

	got, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestFileStoreKeepsOtherRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	other, err := NewFileStore("othertool", path)
	require.NoError(t, err)
	require.NoError(t, other.Set(types.Credentials{Username: "x", EmailAddress: "x@example.com", Password: "y"}))

	s, err := NewFileStore("tradebump", path)
	require.NoError(t, err)
	_, err = s.Get()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(validCreds))
	got, err := other.Get()
	require.NoError(t, err)
	assert.Equal(t, "x", got.Username)
}

func TestFileStoreMissingFile(t *testing.T) {
	s, err := NewFileStore("tradebump", filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	_, err = s.Get()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *types.Credentials)
		wantErr string
	}{
		{"valid", func(c *types.Credentials) {}, ""},
		{"empty username", func(c *types.Credentials) { c.Username = "" }, "Username must not be empty"},
		{"padded username", func(c *types.Credentials) { c.Username = " bumpmaster" }, "Username must not start or end with whitespace"},
		{"invalid email", func(c *types.Credentials) { c.EmailAddress = "bump-at-example.com" }, "EmailAddress is not a valid email address"},
		{"empty password", func(c *types.Credentials) { c.Password = "" }, "Password must not be empty"},
		{"padded password", func(c *types.Credentials) { c.Password = "secret\t" }, "Password must not start or end with whitespace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCreds
			tt.modify(&c)
			err := Validate(c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateField(t *testing.T) {
	assert.NoError(t, ValidateField("EmailAddress", "bump@example.com"))
	assert.EqualError(t, ValidateField("EmailAddress", "nope"), "EmailAddress is not a valid email address")
	assert.EqualError(t, ValidateField("Password", " x"), "Password must not start or end with whitespace")
	assert.Error(t, ValidateField("Color", "red"))
}

func TestNewValidatorRegistersTrimmed(t *testing.T) {
	var v interface {
		Var(field any, tag string) error
	}
	require.NotPanics(t, func() { v = newValidator() })
	assert.NoError(t, v.Var("bumpmaster", "trimmed"))
	assert.Error(t, v.Var(" bumpmaster", "trimmed"))
}

type memStore struct {
	c   types.Credentials
	err error
}

func (m *memStore) Get() (types.Credentials, error) { return m.c, m.err }
func (m *memStore) Set(c types.Credentials) error   { m.c = c; return nil }

func TestLoadPrefersEnv(t *testing.T) {
	t.Setenv("TRADEBUMP_USERNAME", "envuser")
	t.Setenv("TRADEBUMP_EMAIL", "env@example.com")
	t.Setenv("TRADEBUMP_PASSWORD", "envpass")

	c, err := Load(&memStore{c: validCreds})
	require.NoError(t, err)
	assert.Equal(t, "envuser", c.Username)
}

func TestLoadFromStore(t *testing.T) {
	t.Setenv("TRADEBUMP_USERNAME", "")
	c, err := Load(&memStore{c: validCreds})
	require.NoError(t, err)
	assert.Equal(t, validCreds, c)

	_, err = Load(&memStore{err: ErrNotFound})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Load(&memStore{c: types.Credentials{Username: "u", EmailAddress: "bad", Password: "p"}})
	assert.ErrorContains(t, err, "invalid credentials")
}

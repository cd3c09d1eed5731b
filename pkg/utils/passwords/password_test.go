package passwords

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPassword_HashAndCompare(t *testing.T) {
	p, err := NewPassword(PasswordInput{Password: "correct horse battery"})
	require.NoError(t, err)
	require.NotEmpty(t, p)
	require.NotEqual(t, "correct horse battery", p.String())

	ok, err := p.ComparePasswordAndHash(PasswordInput{Password: "correct horse battery"})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = p.ComparePasswordAndHash(PasswordInput{Password: "wrong password"})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewPassword_RejectsShort(t *testing.T) {
	_, err := NewPassword(PasswordInput{Password: "short"})
	require.Error(t, err)
}

func TestPassword_ScanValue(t *testing.T) {
	var p Password
	require.NoError(t, p.Scan("$argon2id$fake"))
	require.Equal(t, "$argon2id$fake", p.String())

	v, err := p.Value()
	require.NoError(t, err)
	require.Equal(t, "$argon2id$fake", v)

	require.NoError(t, p.Scan(nil))
	require.Empty(t, p.String())
}

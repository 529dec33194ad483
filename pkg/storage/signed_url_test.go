package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("mat-1", "materials/notes_ch1.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	materialID, path, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "mat-1", materialID)
	require.Equal(t, "materials/notes_ch1.pdf", path)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerRejectsExpired(t *testing.T) {
	signer := &SignedURLSigner{secret: []byte("secret"), ttl: time.Millisecond}
	token, _, err := signer.Generate("mat-1", "materials/notes_ch1.pdf")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, _, _, err = signer.Parse(token)
	require.Error(t, err)
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("mat-1", "materials/notes_ch1.pdf")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "mat-2"
	_, _, _, err = signer.Parse(strings.Join(parts, "."))
	require.Error(t, err)

	_, _, _, err = NewSignedURLSigner("other-secret", time.Hour).Parse(token)
	require.Error(t, err)
}

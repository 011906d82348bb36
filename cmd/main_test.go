package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeptore/flaw/v8"
	"gopkg.in/yaml.v3"

	"github.com/xeptore/toptracks/spotify"
)

func inputFile(t *testing.T, content string) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	_, err = f.WriteString(content)
	require.NoError(t, err)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)
	return f
}

func TestPromptCredentials(t *testing.T) {
	t.Parallel()

	creds, err := promptCredentials(inputFile(t, " my-id \nmy-secret\n"), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "my-id", creds.ClientID)
	assert.Equal(t, "my-secret", creds.ClientSecret)

	creds, err = promptCredentials(inputFile(t, "my-id\nno-newline-secret"), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "no-newline-secret", creds.ClientSecret)

	_, err = promptCredentials(inputFile(t, "my-id\n\n"), io.Discard)
	var inputErr *spotify.InputError
	require.True(t, errors.As(err, &inputErr))
}

func TestDumpFlaw(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.yaml")
	require.NoError(t, dumpFlaw(plain, errors.New("plain")))
	_, err := os.Stat(plain)
	assert.ErrorIs(t, err, os.ErrNotExist)

	dumped := filepath.Join(dir, "flaw.yaml")
	fetchErr := &spotify.FetchError{
		Endpoint: "/tracks",
		Status:   500,
		Err:      flaw.From(errors.New("unexpected status code: 500")).Append(flaw.P{"url": "http://example/tracks"}),
	}
	require.NoError(t, dumpFlaw(dumped, fetchErr))

	b, err := os.ReadFile(dumped)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, yaml.Unmarshal(b, &out))
	assert.Equal(t, "unexpected status code: 500", out["inner"])
}

package app

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	out := &bytes.Buffer{}
	r := bufio.NewReader(strings.NewReader("  hello world  \n"))

	got, err := GetSimpleText(r, "Say something", out)

	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Contains(t, out.String(), "Say something")
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	out := &bytes.Buffer{}
	r := bufio.NewReader(strings.NewReader("no newline"))

	got, err := GetSimpleText(r, "Say something", out)

	require.NoError(t, err)
	assert.Equal(t, "no newline", got)
}

func TestGetPassword(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(fd int) ([]byte, error) { return []byte("s3cret!!"), nil }

	out := &bytes.Buffer{}
	got, err := GetPassword("Enter password", out)

	require.NoError(t, err)
	assert.Equal(t, "s3cret!!", got)
	assert.Contains(t, out.String(), "Enter password")
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModality(t *testing.T) {
	m, err := ParseModality("online")
	require.NoError(t, err)
	assert.Equal(t, ModalityOnline, m)

	m, err = ParseModality("presencial")
	require.NoError(t, err)
	assert.Equal(t, ModalityPresencial, m)

	_, err = ParseModality("phone")
	assert.Error(t, err)

	_, err = ParseModality("Online")
	assert.Error(t, err, "modalities are case sensitive")
}

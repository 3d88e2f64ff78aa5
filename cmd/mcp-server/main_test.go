package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	filter, err := parseWindow("acme", "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, "acme", filter.ClientID)
	assert.Equal(t, 1, filter.Start.Day())
	assert.Equal(t, 31, filter.End.Day())

	_, err = parseWindow("", "2024-03-01", "2024-03-31")
	assert.Error(t, err, "client_id required")

	_, err = parseWindow("acme", "03/01/2024", "2024-03-31")
	assert.Error(t, err, "bad start date")

	_, err = parseWindow("acme", "2024-03-31", "2024-03-01")
	assert.Error(t, err, "inverted window")
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactRowValidate(t *testing.T) {
	valid := FactRow{
		ClientID:    "acme",
		Date:        time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Source:      SourcePaidSocial,
		AdID:        "ad-1",
		Impressions: 100,
		Clicks:      10,
		Spend:       25.5,
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.Source = "display"
	assert.Error(t, bad.Validate(), "unknown source")

	bad = valid
	bad.Clicks = -1
	assert.Error(t, bad.Validate(), "negative measure")

	bad = valid
	bad.ClientID = ""
	assert.Error(t, bad.Validate(), "missing client")

	search := FactRow{
		ClientID:    "acme",
		Date:        time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Source:      SourceLocalSearch,
		Keyword:     "plumber",
		Impressions: 50,
		Clicks:      5,
		Spend:       12000,
	}
	require.NoError(t, search.Validate())
}

func TestFactRowEntityKey(t *testing.T) {
	social := FactRow{Source: SourcePaidSocial, AdID: "ad-9"}
	assert.Equal(t, "ad-9", social.EntityKey())

	search := FactRow{Source: SourceLocalSearch, Keyword: "강남 피부과"}
	assert.Equal(t, "강남 피부과", search.EntityKey())
}

func TestFactRowDay(t *testing.T) {
	row := FactRow{Date: time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)}
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), row.Day())
}

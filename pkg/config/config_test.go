package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightharbor/storefront/pkg/types"
)

func TestGetOfferingByID(t *testing.T) {
	c := &Config{Offerings: []*types.Offering{
		{ID: "sprint", PriceID: "price_sprint"},
		{ID: "growth", PriceID: "price_growth", Tier: types.TierGrowth},
	}}

	require.Equal(t, "price_sprint", c.GetOfferingByID("sprint").PriceID)
	require.Nil(t, c.GetOfferingByID("nope"))
}

func TestGetOfferingByPriceID(t *testing.T) {
	c := &Config{Offerings: []*types.Offering{
		{ID: "growth", PriceID: "price_growth", Tier: types.TierGrowth},
	}}

	require.Equal(t, "growth", c.GetOfferingByPriceID("price_growth").ID)
	require.Nil(t, c.GetOfferingByPriceID("price_legacy"))
}

func TestSMTPConfigured(t *testing.T) {
	require.False(t, SMTPConfig{}.Configured())
	require.False(t, SMTPConfig{Host: "smtp.example.com"}.Configured())
	require.True(t, SMTPConfig{Host: "smtp.example.com", From: "hello@example.com"}.Configured())
}

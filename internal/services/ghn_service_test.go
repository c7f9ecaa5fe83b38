package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeRegionName(t *testing.T) {
	require.Equal(t, "thanh pho thu duc", normalizeRegionName("Thành phố Thủ Đức"))
	require.Equal(t, "da nang", normalizeRegionName("  Đà   Nẵng "))
	require.Equal(t, "quan 1", normalizeRegionName("Quận 1"))
}

func TestRegionNameMatches(t *testing.T) {
	extensions := []string{"Thu Duc", "TP Thu Duc", "Thanh pho Thu Duc"}

	require.True(t, regionNameMatches("Thủ Đức", "Thành phố Thủ Đức", extensions))
	require.True(t, regionNameMatches("thu duc", "Thành phố Thủ Đức", extensions))
	require.True(t, regionNameMatches("TP Thu Duc", "Thành phố Thủ Đức", extensions))

	require.False(t, regionNameMatches("Binh Thanh", "Thành phố Thủ Đức", extensions))
	// An empty query never matches; the caller falls back instead.
	require.False(t, regionNameMatches("", "Thành phố Thủ Đức", extensions))
}

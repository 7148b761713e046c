package geo

import (
	"math"
	"testing"

	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
	"github.com/stretchr/testify/require"
)

func TestDistanceIdenticalPoints(t *testing.T) {
	require.InDelta(t, 0, Distance(15.3694, 44.1910, 15.3694, 44.1910), 1e-6)
}

func TestDistanceAntipodalPoints(t *testing.T) {
	// Antipodal points are half the Earth's circumference apart.
	half := math.Pi * EarthRadiusMeters
	require.InDelta(t, half, Distance(0, 0, 0, 180), 1)
	require.InDelta(t, half, Distance(90, 0, -90, 0), 1)
}

func TestDistanceKnownPair(t *testing.T) {
	// Sanaa to Aden is roughly 305-325 km.
	d := Distance(15.3694, 44.1910, 12.7855, 45.0187)
	require.Greater(t, d, 290000.0)
	require.Less(t, d, 330000.0)
}

func TestInCircleMonotonicity(t *testing.T) {
	const (
		pLat, pLng = 15.40, 44.20
		cLat, cLng = 15.37, 44.19
	)
	d := Distance(pLat, pLng, cLat, cLng)

	// True for every radius at or above the distance, false below it.
	for _, r := range []float64{d, d + 1, d * 2, d + 5000} {
		require.True(t, InCircle(pLat, pLng, cLat, cLng, r))
	}
	for _, r := range []float64{d - 1, d / 2, 0} {
		require.False(t, InCircle(pLat, pLng, cLat, cLng, r))
	}
}

func TestFormatDistance(t *testing.T) {
	require.Equal(t, "850 م", FormatDistance(850, i18n.LangAr))
	require.Equal(t, "850 m", FormatDistance(850, i18n.LangEn))
	require.Equal(t, "3.0 كم", FormatDistance(3000, i18n.LangAr))
	require.Equal(t, "3.0 km", FormatDistance(3000, i18n.LangEn))
	require.Equal(t, "1.5 km", FormatDistance(1540, i18n.LangEn))
	require.Equal(t, "0 m", FormatDistance(0.2, i18n.LangEn))
}

package geo

import (
	"fmt"
	"math"

	"github.com/dukkan-erp/dukkan-erp/internal/i18n"
)

// FormatDistance renders a distance for display: whole meters below one
// kilometer, otherwise kilometers to one decimal, with a localized unit.
func FormatDistance(meters float64, lang i18n.Lang) string {
	if meters < 1000 {
		unit := "م"
		if lang == i18n.LangEn {
			unit = "m"
		}
		return fmt.Sprintf("%d %s", int(math.Round(meters)), unit)
	}
	unit := "كم"
	if lang == i18n.LangEn {
		unit = "km"
	}
	return fmt.Sprintf("%.1f %s", meters/1000, unit)
}

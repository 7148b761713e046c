package zones

// LocalizedName is a bilingual display name.
type LocalizedName struct {
	Ar string `json:"ar"`
	En string `json:"en"`
}

// Circle is the optional circular boundary of a zone.
type Circle struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"` // meters
}

// DeliveryZone model. Owned by the store; read-only here.
type DeliveryZone struct {
	ID               int64         `json:"id"`
	Name             LocalizedName `json:"name"`
	IsActive         bool          `json:"is_active"`
	DeliveryFee      float64       `json:"delivery_fee"`
	EstimatedMinutes int           `json:"estimated_minutes"`
	Circle           *Circle       `json:"coordinates,omitempty"`
}

// MatchResult reports zone verification for a captured coordinate.
// Checked is false when the zone has no boundary, in which case the match is
// assumed (cannot verify, trust the selection).
type MatchResult struct {
	Matches  bool    `json:"matches"`
	Checked  bool    `json:"checked"`
	Distance float64 `json:"distance,omitempty"`
	IsInside bool    `json:"is_inside,omitempty"`
}

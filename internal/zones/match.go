package zones

import (
	"github.com/dukkan-erp/dukkan-erp/internal/geo"
)

// FindNearest picks the zone for a user location.
//
// Zones with a boundary are considered first: the first *active* zone whose
// circle contains the point wins, in input order (deliberate tie-break by
// array order, not nearest-first). If no circle contains the point, the
// geometrically nearest zone with a boundary is returned regardless of its
// active status. When no zone has a boundary at all, the first active zone
// (or failing that, the first zone) is returned as a soft fallback.
func FindNearest(loc geo.Point, list []DeliveryZone) *DeliveryZone {
	if len(list) == 0 {
		return nil
	}

	withCircle := make([]*DeliveryZone, 0, len(list))
	for i := range list {
		if list[i].Circle != nil {
			withCircle = append(withCircle, &list[i])
		}
	}

	if len(withCircle) == 0 {
		for i := range list {
			if list[i].IsActive {
				return &list[i]
			}
		}
		return &list[0]
	}

	for _, z := range withCircle {
		if !z.IsActive {
			continue
		}
		if geo.InCircle(loc.Lat, loc.Lng, z.Circle.Lat, z.Circle.Lng, z.Circle.Radius) {
			return z
		}
	}

	var nearest *DeliveryZone
	best := 0.0
	for _, z := range withCircle {
		d := geo.Distance(loc.Lat, loc.Lng, z.Circle.Lat, z.Circle.Lng)
		if nearest == nil || d < best {
			nearest = z
			best = d
		}
	}
	return nearest
}

// VerifyMatch checks whether the location falls inside the zone's boundary.
// A zone without a boundary unconditionally matches.
func VerifyMatch(loc geo.Point, zone DeliveryZone) MatchResult {
	if zone.Circle == nil {
		return MatchResult{Matches: true}
	}
	d := geo.Distance(loc.Lat, loc.Lng, zone.Circle.Lat, zone.Circle.Lng)
	inside := d <= zone.Circle.Radius
	return MatchResult{
		Matches:  inside,
		Checked:  true,
		Distance: d,
		IsInside: inside,
	}
}

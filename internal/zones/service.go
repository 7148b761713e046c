package zones

import (
	"context"

	"github.com/dukkan-erp/dukkan-erp/internal/geo"
)

// RepositoryPort defines data access for zones.
type RepositoryPort interface {
	List(ctx context.Context) ([]DeliveryZone, error)
	Get(ctx context.Context, id int64) (*DeliveryZone, error)
}

// Service exposes zone lookups and geo detection.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all zones.
func (s *Service) List(ctx context.Context) ([]DeliveryZone, error) {
	return s.repo.List(ctx)
}

// Get returns one zone.
func (s *Service) Get(ctx context.Context, id int64) (*DeliveryZone, error) {
	return s.repo.Get(ctx, id)
}

// Detect resolves the delivery zone for a coordinate.
func (s *Service) Detect(ctx context.Context, loc geo.Point) (*DeliveryZone, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return FindNearest(loc, list), nil
}

// Verify checks a coordinate against a zone's boundary.
func (s *Service) Verify(ctx context.Context, zoneID int64, loc geo.Point) (MatchResult, error) {
	zone, err := s.repo.Get(ctx, zoneID)
	if err != nil {
		return MatchResult{}, err
	}
	return VerifyMatch(loc, *zone), nil
}

package rbac

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Service resolves effective permissions for back-office users.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service backed by the provided pool.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// EffectivePermissions returns the deduplicated permission names a user holds
// through role membership.
func (s *Service) EffectivePermissions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT p.name
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY p.name`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		perms = append(perms, name)
	}
	return perms, rows.Err()
}

// Has reports whether the user holds the given permission.
func (s *Service) Has(ctx context.Context, userID int64, perm string) (bool, error) {
	granted, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	perm = strings.ToLower(perm)
	for _, g := range granted {
		if strings.ToLower(g) == perm {
			return true, nil
		}
	}
	return false, nil
}

package settlement

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

func TestSettlementIDTreatsNullAsNoSettlement(t *testing.T) {
	require.Zero(t, settlementID(pgtype.Int8{}))
	require.Equal(t, int64(42), settlementID(pgtype.Int8{Int64: 42, Valid: true}))
}

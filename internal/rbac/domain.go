// Package rbac guards the back-office surfaces. Capabilities are flat
// permission names resolved per user; the storefront endpoints are public and
// never pass through here.
package rbac

// Back-office capabilities.
const (
	PermLedgerView       = "ledger.view"
	PermSettlementCreate = "settlement.create"
	PermSettlementVoid   = "settlement.void"
	PermZonesManage      = "zones.manage"
	PermJobsTrigger      = "jobs.trigger"
)

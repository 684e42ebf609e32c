package cinevault

import (
	"time"

	"github.com/google/uuid"
)

// ContentStatus is the domain type for content lifecycle states.
type ContentStatus string

// Content status constants (typed). The only legal transitions are
// Submitted -> Approved -> Registered -> Rentable, with
// Submitted -> Rejected as the alternate terminal branch.
const (
	ContentStatusSubmitted  ContentStatus = "submitted"
	ContentStatusApproved   ContentStatus = "approved"
	ContentStatusRegistered ContentStatus = "registered"
	ContentStatusRentable   ContentStatus = "rentable"
	ContentStatusRejected   ContentStatus = "rejected"
)

// Role is the domain type for access-control role tags.
type Role string

// Role constants. Admin can grant and revoke every role, including admin.
const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleOperator  Role = "operator"
)

// NativeToken is the payment-token sentinel for the platform's native
// currency. Any non-empty token string names a fungible token.
const NativeToken = ""

// Internal ledger accounts. PlatformAccount is the escrow that accumulates
// upload fees and platform shares; TreasuryAccount receives withdrawals.
const (
	PlatformAccount = "platform:escrow"
	TreasuryAccount = "platform:treasury"
	RegistryAccount = "platform:registry"
)

// RegistryMode selects how rental payments interact with the external rights
// registry.
type RegistryMode string

const (
	// RegistryModeLocal settles rental payments locally: the price is split
	// between creator and platform escrow and the registry is only consulted
	// during content registration.
	RegistryModeLocal RegistryMode = "local"

	// RegistryModeForwarding forwards the full rental payment to the external
	// registry, which mints a license token to the renter and returns its
	// identifier.
	RegistryModeForwarding RegistryMode = "forwarding"
)

// ContentItem is a licensable piece of media moving through the moderation
// and registration lifecycle. IDs are dense and monotonically increasing,
// starting at 1; they are assigned by the repository and never reused.
// Rejected items are terminal but persist for auditability.
type ContentItem struct {
	ID           int64         `json:"id"`
	Creator      string        `json:"creator"`
	TrailerURI   string        `json:"trailer_uri"`
	MetadataURI  string        `json:"metadata_uri"`
	Price        int64         `json:"price"`
	PaymentToken string        `json:"payment_token"`
	Status       ContentStatus `json:"status"`
	Likes        int64         `json:"likes"`
	Rentals      int64         `json:"rentals"`

	// Registry identifiers are empty until the item reaches the registered
	// state, then immutable.
	RegistryItemID         string `json:"registry_item_id,omitempty"`
	RegistryLicenseTermsID string `json:"registry_license_terms_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RentalRecord proves a renter's time-bound access right to a content item.
// The repository keeps an append-only history per content for audit and a
// latest record per (renter, content) for access checks.
type RentalRecord struct {
	ID             uuid.UUID `json:"id"`
	ContentID      int64     `json:"content_id"`
	Renter         string    `json:"renter"`
	AmountPaid     int64     `json:"amount_paid"`
	PaymentToken   string    `json:"payment_token"`
	LicenseTokenID string    `json:"license_token_id,omitempty"`
	IssuedAt       time.Time `json:"issued_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Active reports whether the record still grants access at the given instant.
func (r *RentalRecord) Active(now time.Time) bool {
	return !r.ExpiresAt.Before(now)
}

// LedgerEntry is a single signed balance change in the funds ledger.
// A batch of entries is always applied atomically and must not drive any
// balance negative.
type LedgerEntry struct {
	Token   string `json:"token"`
	Account string `json:"account"`
	Delta   int64  `json:"delta"`
}

// Settlement describes the outcome of a planned fund movement: the atomic
// entry batch plus the derived amounts callers report in events.
type Settlement struct {
	Entries       []LedgerEntry
	CreatorShare  int64
	PlatformShare int64
	Refund        int64
}

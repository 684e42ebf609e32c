package cinevault

import (
	"context"
)

// Service is the single entry surface for the content lifecycle, the rental
// ledger, and fund settlement. Every mutating method runs as one atomic unit:
// it either commits completely or leaves no trace. Mutating methods reject
// immediately while the pause switch is engaged and refuse reentrant
// invocation from within another mutating call.
type Service interface {
	// Lifecycle operations
	SubmitContent(ctx context.Context, req SubmitContentRequest) (*ContentItem, error)
	ReviewContent(ctx context.Context, req ReviewContentRequest) (*ContentItem, error)
	ConfirmRegistration(ctx context.Context, req ConfirmRegistrationRequest) (*ContentItem, error)
	RetryRegistration(ctx context.Context, req RetryRegistrationRequest) error
	ConfirmRightsConfigured(ctx context.Context, req ConfirmRightsRequest) (*ContentItem, error)
	LikeContent(ctx context.Context, req LikeContentRequest) error

	// Rental operations
	RentContent(ctx context.Context, req RentContentRequest) (*RentalRecord, error)
	HasActiveAccess(ctx context.Context, renter string, contentID int64) (bool, error)
	ListRentals(ctx context.Context, contentID int64) ([]*RentalRecord, error)

	// Read operations
	GetContent(ctx context.Context, id int64) (*ContentItem, error)
	ListContent(ctx context.Context, req ListContentRequest) ([]*ContentItem, error)
	BalanceOf(ctx context.Context, token, account string) (int64, error)

	// Funds administration
	Deposit(ctx context.Context, req DepositRequest) error
	WithdrawFees(ctx context.Context, req WithdrawFeesRequest) error

	// Pause switch
	Pause(ctx context.Context, admin string) error
	Unpause(ctx context.Context, admin string) error
	IsPaused() bool

	// Access control
	GrantRole(ctx context.Context, req GrantRoleRequest) error
	RevokeRole(ctx context.Context, req RevokeRoleRequest) error
	HasRole(ctx context.Context, role Role, account string) (bool, error)
}

// Repository defines the persistence contract for content, rentals, likes,
// role memberships, and the funds ledger. Methods that accept a settlement
// batch apply the batch and the record write as one atomic unit; if any
// entry would drive a balance negative the whole call fails with
// ErrInsufficientFunds and nothing is written.
type Repository interface {
	// Content operations. CreateContent assigns the next dense id.
	CreateContent(ctx context.Context, content *ContentItem, settlement []LedgerEntry) error
	GetContent(ctx context.Context, id int64) (*ContentItem, error)
	UpdateContent(ctx context.Context, content *ContentItem) error
	ListContent(ctx context.Context, req ListContentRequest) ([]*ContentItem, error)

	// Like operations. AddLike fails with ErrAlreadyLiked on duplicates and
	// increments the content's like counter.
	AddLike(ctx context.Context, contentID int64, account string) error
	HasLiked(ctx context.Context, contentID int64, account string) (bool, error)

	// Rental operations. CreateRental appends to the per-content history,
	// replaces the (renter, content) latest record, and increments the
	// content's rental counter, all atomically with the settlement batch.
	CreateRental(ctx context.Context, record *RentalRecord, settlement []LedgerEntry) error
	GetLatestRental(ctx context.Context, renter string, contentID int64) (*RentalRecord, error)
	ListRentalsByContent(ctx context.Context, contentID int64) ([]*RentalRecord, error)

	// Ledger operations
	BalanceOf(ctx context.Context, token, account string) (int64, error)
	ApplyEntries(ctx context.Context, entries []LedgerEntry) error

	// Role operations
	GrantRole(ctx context.Context, role Role, account string) error
	RevokeRole(ctx context.Context, role Role, account string) error
	HasRole(ctx context.Context, role Role, account string) (bool, error)
	ListRoleMembers(ctx context.Context, role Role) ([]string, error)
}

// RegistryBridge is the client contract for the external rights registry and
// licensing service. A failed bridge call always aborts the enclosing
// operation; the bridge never swallows errors.
type RegistryBridge interface {
	// Register announces an approved content item to the external registry.
	// The registry answers out of band; the operator later confirms the
	// issued identifiers through Service.ConfirmRegistration.
	Register(ctx context.Context, req RegisterRequest) error

	// MintLicense forwards a rental payment to the registry's licensing
	// entry point, which mints an access token to the renter and returns
	// its identifier.
	MintLicense(ctx context.Context, req MintLicenseRequest) (string, error)
}

// RegisterRequest announces an approved item to the external registry.
type RegisterRequest struct {
	ContentID   int64
	Creator     string
	MetadataURI string
}

// MintLicenseRequest asks the registry to mint a license token for a rental.
type MintLicenseRequest struct {
	ContentID              int64
	RegistryItemID         string
	RegistryLicenseTermsID string
	Renter                 string
	Amount                 int64
	PaymentToken           string
}

// EventSink receives a notification for every committed state delta. Sink
// failures are logged by callers but never fail the operation.
type EventSink interface {
	ContentSubmitted(ctx context.Context, content *ContentItem, feePaid, refund int64) error
	ContentReviewed(ctx context.Context, content *ContentItem, approved bool) error
	RegistrationRequested(ctx context.Context, content *ContentItem) error
	RegistrationConfirmed(ctx context.Context, content *ContentItem) error
	RightsConfigurationRequested(ctx context.Context, content *ContentItem) error
	RightsConfigured(ctx context.Context, content *ContentItem) error
	ContentLiked(ctx context.Context, contentID int64, account string) error
	RentalProcessed(ctx context.Context, record *RentalRecord, settlement *Settlement) error
	FundsDeposited(ctx context.Context, token, account string, amount int64) error
	FeesWithdrawn(ctx context.Context, token string, amount int64, admin string) error
	PauseChanged(ctx context.Context, paused bool, admin string) error
	RoleGranted(ctx context.Context, role Role, account, admin string) error
	RoleRevoked(ctx context.Context, role Role, account, admin string) error
}

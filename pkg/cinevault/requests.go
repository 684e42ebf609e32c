package cinevault

// Request/Response DTOs

// SubmitContentRequest contains parameters for submitting new content.
// AmountOffered is the native currency sent with the call; the configured
// upload fee is taken from it and any excess is refunded to the creator.
type SubmitContentRequest struct {
	Creator       string
	TrailerURI    string
	MetadataURI   string
	Price         int64
	PaymentToken  string
	AmountOffered int64
}

// ReviewContentRequest contains parameters for moderating a submitted item.
type ReviewContentRequest struct {
	Moderator string
	ContentID int64
	Approve   bool
}

// ConfirmRegistrationRequest contains the identifiers issued by the external
// rights registry for an approved item. Confirmation is idempotent: repeating
// the call with identical identifiers succeeds without further effect.
type ConfirmRegistrationRequest struct {
	Operator               string
	ContentID              int64
	RegistryItemID         string
	RegistryLicenseTermsID string
}

// RetryRegistrationRequest re-issues the registration intent for an approved
// item whose external registration never confirmed.
type RetryRegistrationRequest struct {
	Operator  string
	ContentID int64
}

// ConfirmRightsRequest marks a registered item's license terms as configured,
// making it rentable.
type ConfirmRightsRequest struct {
	Operator  string
	ContentID int64
}

// LikeContentRequest contains parameters for liking content. Each account may
// like a given content item at most once.
type LikeContentRequest struct {
	Account   string
	ContentID int64
}

// RentContentRequest contains parameters for purchasing a time-bound access
// grant. For native-currency content AmountOffered must cover the price and
// the excess is refunded; for token-priced content AmountOffered must be zero
// and the price is taken from the renter's token balance.
type RentContentRequest struct {
	Renter        string
	ContentID     int64
	AmountOffered int64
}

// ListContentRequest contains parameters for listing content.
type ListContentRequest struct {
	Status  ContentStatus // optional filter; empty means all statuses
	Creator string        // optional filter; empty means all creators
}

// DepositRequest credits an account's ledger balance. This is the on-ramp by
// which external value enters the funds ledger.
type DepositRequest struct {
	Token   string
	Account string
	Amount  int64
}

// WithdrawFeesRequest moves accumulated platform fees from escrow to the
// treasury account.
type WithdrawFeesRequest struct {
	Admin  string
	Token  string
	Amount int64
}

// GrantRoleRequest contains parameters for granting a role.
type GrantRoleRequest struct {
	Admin   string
	Role    Role
	Account string
}

// RevokeRoleRequest contains parameters for revoking a role.
type RevokeRoleRequest struct {
	Admin   string
	Role    Role
	Account string
}

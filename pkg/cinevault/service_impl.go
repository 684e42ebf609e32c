package cinevault

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// begin performs the checks shared by every mutating entry point: the pause
// switch first, then the reentrancy guard. The returned context must flow to
// all downstream calls and the release func must run on every exit path.
func (s *service) begin(ctx context.Context) (context.Context, func(), error) {
	if s.pause.isPaused() {
		return nil, nil, ErrPaused
	}
	return s.guard.enter(ctx)
}

func (s *service) requireRole(ctx context.Context, role Role, account string) error {
	if account == "" {
		return fmt.Errorf("%w: caller account is empty", ErrInvalidInput)
	}
	ok, err := s.repository.HasRole(ctx, role, account)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s requires role %s", ErrNotAuthorized, account, role)
	}
	return nil
}

func (s *service) fireEvent(event string, err error) {
	if err != nil {
		s.logger.Warn("event sink failed", "event", event, "error", err)
	}
}

// Lifecycle operations

func (s *service) SubmitContent(ctx context.Context, req SubmitContentRequest) (*ContentItem, error) {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if req.Creator == "" {
		return nil, fmt.Errorf("%w: creator account is empty", ErrInvalidInput)
	}
	if req.TrailerURI == "" || req.MetadataURI == "" {
		return nil, fmt.Errorf("%w: trailer and metadata URIs are required", ErrInvalidInput)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}

	plan, err := s.settle.planFee(req.Creator, req.AmountOffered, s.uploadFee)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	content := &ContentItem{
		Creator:      req.Creator,
		TrailerURI:   req.TrailerURI,
		MetadataURI:  req.MetadataURI,
		Price:        req.Price,
		PaymentToken: req.PaymentToken,
		Status:       ContentStatusSubmitted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repository.CreateContent(ctx, content, plan.Entries); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "submit", Err: err}
	}

	s.fireEvent("content_submitted", s.eventSink.ContentSubmitted(ctx, content, s.uploadFee, plan.Refund))
	return content, nil
}

func (s *service) ReviewContent(ctx context.Context, req ReviewContentRequest) (*ContentItem, error) {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.requireRole(ctx, RoleModerator, req.Moderator); err != nil {
		return nil, err
	}

	content, err := s.repository.GetContent(ctx, req.ContentID)
	if err != nil {
		return nil, err
	}
	if _, err := canReview(content.Status); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "review", Err: err}
	}

	if req.Approve {
		// Announce the item to the external registry before committing the
		// approval. A bridge failure aborts the review; the registry side is
		// idempotent, so a spurious announcement from a failed commit is
		// harmless and RetryRegistration covers the inverse case.
		if err := s.bridge.Register(ctx, RegisterRequest{
			ContentID:   content.ID,
			Creator:     content.Creator,
			MetadataURI: content.MetadataURI,
		}); err != nil {
			return nil, &ContentError{ContentID: content.ID, Op: "review", Err: err}
		}
		content.Status = ContentStatusApproved
	} else {
		content.Status = ContentStatusRejected
	}
	content.UpdatedAt = s.now().UTC()

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "review", Err: err}
	}

	s.fireEvent("content_reviewed", s.eventSink.ContentReviewed(ctx, content, req.Approve))
	if req.Approve {
		s.fireEvent("registration_requested", s.eventSink.RegistrationRequested(ctx, content))
	}
	return content, nil
}

func (s *service) ConfirmRegistration(ctx context.Context, req ConfirmRegistrationRequest) (*ContentItem, error) {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.requireRole(ctx, RoleOperator, req.Operator); err != nil {
		return nil, err
	}
	if req.RegistryItemID == "" || req.RegistryLicenseTermsID == "" {
		return nil, fmt.Errorf("%w: registry identifiers are required", ErrInvalidInput)
	}

	content, err := s.repository.GetContent(ctx, req.ContentID)
	if err != nil {
		return nil, err
	}

	// Confirmation is idempotent: repeating the confirm with the identifiers
	// already on record succeeds without further effect. Conflicting
	// identifiers can never overwrite the recorded ones.
	if content.RegistryItemID != "" {
		if content.RegistryItemID == req.RegistryItemID &&
			content.RegistryLicenseTermsID == req.RegistryLicenseTermsID {
			return content, nil
		}
		return nil, &ContentError{
			ContentID: content.ID,
			Op:        "confirm_registration",
			Err:       fmt.Errorf("%w: registry identifiers already set", ErrInvalidStatus),
		}
	}

	if _, err := canConfirmRegistration(content.Status); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "confirm_registration", Err: err}
	}

	content.RegistryItemID = req.RegistryItemID
	content.RegistryLicenseTermsID = req.RegistryLicenseTermsID
	content.Status = ContentStatusRegistered
	content.UpdatedAt = s.now().UTC()

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "confirm_registration", Err: err}
	}

	s.fireEvent("registration_confirmed", s.eventSink.RegistrationConfirmed(ctx, content))
	s.fireEvent("rights_configuration_requested", s.eventSink.RightsConfigurationRequested(ctx, content))
	return content, nil
}

func (s *service) RetryRegistration(ctx context.Context, req RetryRegistrationRequest) error {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := s.requireRole(ctx, RoleOperator, req.Operator); err != nil {
		return err
	}

	content, err := s.repository.GetContent(ctx, req.ContentID)
	if err != nil {
		return err
	}
	if content.Status != ContentStatusApproved {
		return &ContentError{
			ContentID: content.ID,
			Op:        "retry_registration",
			Err:       fmt.Errorf("%w: registration retry requires an approved item (status: %s)", ErrInvalidStatus, content.Status),
		}
	}

	if err := s.bridge.Register(ctx, RegisterRequest{
		ContentID:   content.ID,
		Creator:     content.Creator,
		MetadataURI: content.MetadataURI,
	}); err != nil {
		return &ContentError{ContentID: content.ID, Op: "retry_registration", Err: err}
	}

	s.fireEvent("registration_requested", s.eventSink.RegistrationRequested(ctx, content))
	return nil
}

func (s *service) ConfirmRightsConfigured(ctx context.Context, req ConfirmRightsRequest) (*ContentItem, error) {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.requireRole(ctx, RoleOperator, req.Operator); err != nil {
		return nil, err
	}

	content, err := s.repository.GetContent(ctx, req.ContentID)
	if err != nil {
		return nil, err
	}
	if _, err := canConfirmRights(content.Status); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "confirm_rights", Err: err}
	}

	content.Status = ContentStatusRentable
	content.UpdatedAt = s.now().UTC()

	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return nil, &ContentError{ContentID: content.ID, Op: "confirm_rights", Err: err}
	}

	s.fireEvent("rights_configured", s.eventSink.RightsConfigured(ctx, content))
	return content, nil
}

func (s *service) LikeContent(ctx context.Context, req LikeContentRequest) error {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	if req.Account == "" {
		return fmt.Errorf("%w: account is empty", ErrInvalidInput)
	}

	content, err := s.repository.GetContent(ctx, req.ContentID)
	if err != nil {
		return err
	}
	if _, err := canLike(content.Status); err != nil {
		return &ContentError{ContentID: content.ID, Op: "like", Err: err}
	}

	if err := s.repository.AddLike(ctx, req.ContentID, req.Account); err != nil {
		if errors.Is(err, ErrAlreadyLiked) {
			return err
		}
		return &ContentError{ContentID: content.ID, Op: "like", Err: err}
	}

	s.fireEvent("content_liked", s.eventSink.ContentLiked(ctx, req.ContentID, req.Account))
	return nil
}

// Rental operations

func (s *service) RentContent(ctx context.Context, req RentContentRequest) (*RentalRecord, error) {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if req.Renter == "" {
		return nil, fmt.Errorf("%w: renter account is empty", ErrInvalidInput)
	}

	content, err := s.repository.GetContent(ctx, req.ContentID)
	if err != nil {
		return nil, err
	}
	if _, err := canRent(content.Status); err != nil {
		return nil, &RentalError{ContentID: req.ContentID, Renter: req.Renter, Op: "rent", Err: err}
	}
	if content.Price <= 0 {
		return nil, &RentalError{
			ContentID: req.ContentID,
			Renter:    req.Renter,
			Op:        "rent",
			Err:       fmt.Errorf("%w: content has no rental price", ErrInvalidInput),
		}
	}

	var plan *Settlement
	switch s.registryMode {
	case RegistryModeForwarding:
		plan, err = s.settle.planForward(req.Renter, req.AmountOffered, content.Price, content.PaymentToken)
	default:
		plan, err = s.settle.planSplit(req.Renter, content.Creator, req.AmountOffered, content.Price, content.PaymentToken)
	}
	if err != nil {
		return nil, &RentalError{ContentID: req.ContentID, Renter: req.Renter, Op: "rent", Err: err}
	}

	var licenseTokenID string
	if s.registryMode == RegistryModeForwarding {
		// The registry mints the renter's license token against the forwarded
		// payment. A mint failure aborts the rental before any funds move.
		licenseTokenID, err = s.bridge.MintLicense(ctx, MintLicenseRequest{
			ContentID:              content.ID,
			RegistryItemID:         content.RegistryItemID,
			RegistryLicenseTermsID: content.RegistryLicenseTermsID,
			Renter:                 req.Renter,
			Amount:                 content.Price,
			PaymentToken:           content.PaymentToken,
		})
		if err != nil {
			return nil, &RentalError{ContentID: req.ContentID, Renter: req.Renter, Op: "rent", Err: err}
		}
	}

	now := s.now().UTC()
	record := &RentalRecord{
		ID:             uuid.New(),
		ContentID:      content.ID,
		Renter:         req.Renter,
		AmountPaid:     content.Price,
		PaymentToken:   content.PaymentToken,
		LicenseTokenID: licenseTokenID,
		IssuedAt:       now,
		ExpiresAt:      now.Add(s.rentalDuration),
	}

	if err := s.repository.CreateRental(ctx, record, plan.Entries); err != nil {
		return nil, &RentalError{ContentID: req.ContentID, Renter: req.Renter, Op: "rent", Err: err}
	}

	s.fireEvent("rental_processed", s.eventSink.RentalProcessed(ctx, record, plan))
	return record, nil
}

func (s *service) HasActiveAccess(ctx context.Context, renter string, contentID int64) (bool, error) {
	record, err := s.repository.GetLatestRental(ctx, renter, contentID)
	if err != nil {
		if errors.Is(err, ErrRentalNotFound) {
			return false, nil
		}
		return false, err
	}
	return record.Active(s.now().UTC()), nil
}

func (s *service) ListRentals(ctx context.Context, contentID int64) ([]*RentalRecord, error) {
	return s.repository.ListRentalsByContent(ctx, contentID)
}

// Read operations

func (s *service) GetContent(ctx context.Context, id int64) (*ContentItem, error) {
	return s.repository.GetContent(ctx, id)
}

func (s *service) ListContent(ctx context.Context, req ListContentRequest) ([]*ContentItem, error) {
	return s.repository.ListContent(ctx, req)
}

func (s *service) BalanceOf(ctx context.Context, token, account string) (int64, error) {
	return s.repository.BalanceOf(ctx, token, account)
}

// Funds administration

func (s *service) Deposit(ctx context.Context, req DepositRequest) error {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	if req.Account == "" {
		return fmt.Errorf("%w: account is empty", ErrInvalidInput)
	}
	if req.Amount <= 0 {
		return fmt.Errorf("%w: deposit amount must be positive", ErrInvalidInput)
	}

	entries := []LedgerEntry{{Token: req.Token, Account: req.Account, Delta: req.Amount}}
	if err := s.repository.ApplyEntries(ctx, entries); err != nil {
		return &SettlementError{Token: req.Token, Op: "deposit", Err: err}
	}

	s.fireEvent("funds_deposited", s.eventSink.FundsDeposited(ctx, req.Token, req.Account, req.Amount))
	return nil
}

func (s *service) WithdrawFees(ctx context.Context, req WithdrawFeesRequest) error {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := s.requireRole(ctx, RoleAdmin, req.Admin); err != nil {
		return err
	}

	plan, err := s.settle.planWithdrawal(req.Token, req.Amount)
	if err != nil {
		return err
	}

	balance, err := s.repository.BalanceOf(ctx, req.Token, PlatformAccount)
	if err != nil {
		return err
	}
	if balance < req.Amount {
		return fmt.Errorf("%w: escrow holds %d, requested %d", ErrInsufficientBalance, balance, req.Amount)
	}

	if err := s.repository.ApplyEntries(ctx, plan.Entries); err != nil {
		return &SettlementError{Token: req.Token, Op: "withdraw", Err: err}
	}

	s.fireEvent("fees_withdrawn", s.eventSink.FeesWithdrawn(ctx, req.Token, req.Amount, req.Admin))
	return nil
}

// Pause switch

func (s *service) Pause(ctx context.Context, admin string) error {
	// Pause and Unpause bypass the pause check itself: the switch could
	// never be released otherwise. The guard still serializes them.
	ctx, release, err := s.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := s.requireRole(ctx, RoleAdmin, admin); err != nil {
		return err
	}
	s.pause.pause()
	s.fireEvent("pause_changed", s.eventSink.PauseChanged(ctx, true, admin))
	return nil
}

func (s *service) Unpause(ctx context.Context, admin string) error {
	ctx, release, err := s.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := s.requireRole(ctx, RoleAdmin, admin); err != nil {
		return err
	}
	s.pause.unpause()
	s.fireEvent("pause_changed", s.eventSink.PauseChanged(ctx, false, admin))
	return nil
}

func (s *service) IsPaused() bool {
	return s.pause.isPaused()
}

// Access control

func validRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleOperator:
		return true
	}
	return false
}

func (s *service) GrantRole(ctx context.Context, req GrantRoleRequest) error {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := s.requireRole(ctx, RoleAdmin, req.Admin); err != nil {
		return err
	}
	if !validRole(req.Role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}
	if req.Account == "" {
		return fmt.Errorf("%w: account is empty", ErrInvalidInput)
	}

	if err := s.repository.GrantRole(ctx, req.Role, req.Account); err != nil {
		return err
	}
	s.fireEvent("role_granted", s.eventSink.RoleGranted(ctx, req.Role, req.Account, req.Admin))
	return nil
}

func (s *service) RevokeRole(ctx context.Context, req RevokeRoleRequest) error {
	ctx, release, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := s.requireRole(ctx, RoleAdmin, req.Admin); err != nil {
		return err
	}
	if !validRole(req.Role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
	}

	if err := s.repository.RevokeRole(ctx, req.Role, req.Account); err != nil {
		return err
	}
	s.fireEvent("role_revoked", s.eventSink.RoleRevoked(ctx, req.Role, req.Account, req.Admin))
	return nil
}

func (s *service) HasRole(ctx context.Context, role Role, account string) (bool, error) {
	return s.repository.HasRole(ctx, role, account)
}

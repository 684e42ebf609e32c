package cinevault

import (
	"context"
	"log/slog"
)

// SlogEventSink writes every domain event to a structured logger. It is the
// default observable sink for server deployments; indexing layers tail these
// records.
type SlogEventSink struct {
	logger *slog.Logger
}

// NewSlogEventSink creates an event sink backed by the given logger.
// A nil logger falls back to slog.Default().
func NewSlogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogEventSink{logger: logger}
}

func (s *SlogEventSink) ContentSubmitted(ctx context.Context, content *ContentItem, feePaid, refund int64) error {
	s.logger.InfoContext(ctx, "content submitted",
		"content_id", content.ID,
		"creator", content.Creator,
		"price", content.Price,
		"payment_token", content.PaymentToken,
		"fee_paid", feePaid,
		"refund", refund)
	return nil
}

func (s *SlogEventSink) ContentReviewed(ctx context.Context, content *ContentItem, approved bool) error {
	s.logger.InfoContext(ctx, "content reviewed",
		"content_id", content.ID,
		"approved", approved,
		"status", content.Status)
	return nil
}

func (s *SlogEventSink) RegistrationRequested(ctx context.Context, content *ContentItem) error {
	s.logger.InfoContext(ctx, "registration requested",
		"content_id", content.ID,
		"creator", content.Creator)
	return nil
}

func (s *SlogEventSink) RegistrationConfirmed(ctx context.Context, content *ContentItem) error {
	s.logger.InfoContext(ctx, "registration confirmed",
		"content_id", content.ID,
		"registry_item_id", content.RegistryItemID,
		"registry_license_terms_id", content.RegistryLicenseTermsID)
	return nil
}

func (s *SlogEventSink) RightsConfigurationRequested(ctx context.Context, content *ContentItem) error {
	s.logger.InfoContext(ctx, "rights configuration requested",
		"content_id", content.ID,
		"registry_item_id", content.RegistryItemID)
	return nil
}

func (s *SlogEventSink) RightsConfigured(ctx context.Context, content *ContentItem) error {
	s.logger.InfoContext(ctx, "rights configured",
		"content_id", content.ID,
		"status", content.Status)
	return nil
}

func (s *SlogEventSink) ContentLiked(ctx context.Context, contentID int64, account string) error {
	s.logger.InfoContext(ctx, "content liked",
		"content_id", contentID,
		"account", account)
	return nil
}

func (s *SlogEventSink) RentalProcessed(ctx context.Context, record *RentalRecord, settlement *Settlement) error {
	s.logger.InfoContext(ctx, "rental processed",
		"rental_id", record.ID,
		"content_id", record.ContentID,
		"renter", record.Renter,
		"amount_paid", record.AmountPaid,
		"payment_token", record.PaymentToken,
		"license_token_id", record.LicenseTokenID,
		"expires_at", record.ExpiresAt,
		"creator_share", settlement.CreatorShare,
		"platform_share", settlement.PlatformShare,
		"refund", settlement.Refund)
	return nil
}

func (s *SlogEventSink) FundsDeposited(ctx context.Context, token, account string, amount int64) error {
	s.logger.InfoContext(ctx, "funds deposited",
		"token", token,
		"account", account,
		"amount", amount)
	return nil
}

func (s *SlogEventSink) FeesWithdrawn(ctx context.Context, token string, amount int64, admin string) error {
	s.logger.InfoContext(ctx, "fees withdrawn",
		"token", token,
		"amount", amount,
		"admin", admin)
	return nil
}

func (s *SlogEventSink) PauseChanged(ctx context.Context, paused bool, admin string) error {
	s.logger.InfoContext(ctx, "pause changed",
		"paused", paused,
		"admin", admin)
	return nil
}

func (s *SlogEventSink) RoleGranted(ctx context.Context, role Role, account, admin string) error {
	s.logger.InfoContext(ctx, "role granted",
		"role", role,
		"account", account,
		"admin", admin)
	return nil
}

func (s *SlogEventSink) RoleRevoked(ctx context.Context, role Role, account, admin string) error {
	s.logger.InfoContext(ctx, "role revoked",
		"role", role,
		"account", account,
		"admin", admin)
	return nil
}

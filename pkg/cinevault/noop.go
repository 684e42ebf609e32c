package cinevault

import (
	"context"
)

// NoopEventSink is a no-operation implementation of EventSink.
// Useful when event handling is not needed or for testing.
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) ContentSubmitted(ctx context.Context, content *ContentItem, feePaid, refund int64) error {
	return nil
}

func (n *NoopEventSink) ContentReviewed(ctx context.Context, content *ContentItem, approved bool) error {
	return nil
}

func (n *NoopEventSink) RegistrationRequested(ctx context.Context, content *ContentItem) error {
	return nil
}

func (n *NoopEventSink) RegistrationConfirmed(ctx context.Context, content *ContentItem) error {
	return nil
}

func (n *NoopEventSink) RightsConfigurationRequested(ctx context.Context, content *ContentItem) error {
	return nil
}

func (n *NoopEventSink) RightsConfigured(ctx context.Context, content *ContentItem) error {
	return nil
}

func (n *NoopEventSink) ContentLiked(ctx context.Context, contentID int64, account string) error {
	return nil
}

func (n *NoopEventSink) RentalProcessed(ctx context.Context, record *RentalRecord, settlement *Settlement) error {
	return nil
}

func (n *NoopEventSink) FundsDeposited(ctx context.Context, token, account string, amount int64) error {
	return nil
}

func (n *NoopEventSink) FeesWithdrawn(ctx context.Context, token string, amount int64, admin string) error {
	return nil
}

func (n *NoopEventSink) PauseChanged(ctx context.Context, paused bool, admin string) error {
	return nil
}

func (n *NoopEventSink) RoleGranted(ctx context.Context, role Role, account, admin string) error {
	return nil
}

func (n *NoopEventSink) RoleRevoked(ctx context.Context, role Role, account, admin string) error {
	return nil
}

// NoopRegistryBridge is a no-operation implementation of RegistryBridge.
// Register succeeds silently and MintLicense returns an empty identifier.
// Suitable for local-ledger deployments with no external registry attached.
type NoopRegistryBridge struct{}

// NewNoopRegistryBridge creates a new no-operation registry bridge
func NewNoopRegistryBridge() RegistryBridge {
	return &NoopRegistryBridge{}
}

func (n *NoopRegistryBridge) Register(ctx context.Context, req RegisterRequest) error {
	return nil
}

func (n *NoopRegistryBridge) MintLicense(ctx context.Context, req MintLicenseRequest) (string, error) {
	return "", nil
}

package cinevault

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Defaults applied by New when the corresponding option is omitted.
const (
	DefaultRentalDuration  = 72 * time.Hour
	DefaultCreatorShareBps = 8000
)

// service implements the Service interface
type service struct {
	repository Repository
	bridge     RegistryBridge
	eventSink  EventSink
	logger     *slog.Logger

	guard callGuard
	pause pauseSwitch

	settle         settlementEngine
	uploadFee      int64
	rentalDuration time.Duration
	registryMode   RegistryMode
	rootAdmin      string

	now func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithRegistryBridge sets the external rights-registry client
func WithRegistryBridge(bridge RegistryBridge) Option {
	return func(s *service) {
		s.bridge = bridge
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the structured logger used for operational messages
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithRootAdmin sets the account granted the admin role at construction.
// The root admin is set exactly once; rotating it afterwards is an ordinary
// admin-gated role grant/revoke.
func WithRootAdmin(account string) Option {
	return func(s *service) {
		s.rootAdmin = account
	}
}

// WithUploadFee sets the flat native-currency fee collected on submission
func WithUploadFee(fee int64) Option {
	return func(s *service) {
		s.uploadFee = fee
	}
}

// WithRentalDuration sets the fixed length of every rental grant
func WithRentalDuration(d time.Duration) Option {
	return func(s *service) {
		s.rentalDuration = d
	}
}

// WithCreatorShareBps sets the creator's share of each rental in basis points
func WithCreatorShareBps(bps int64) Option {
	return func(s *service) {
		s.settle.creatorShareBps = bps
	}
}

// WithRegistryMode selects local or forwarding settlement for rentals
func WithRegistryMode(mode RegistryMode) Option {
	return func(s *service) {
		s.registryMode = mode
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		eventSink:      NewNoopEventSink(),
		bridge:         NewNoopRegistryBridge(),
		logger:         slog.Default(),
		rentalDuration: DefaultRentalDuration,
		registryMode:   RegistryModeLocal,
		settle:         settlementEngine{creatorShareBps: DefaultCreatorShareBps},
		now:            time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.rootAdmin == "" {
		return nil, fmt.Errorf("root admin account is required")
	}
	if s.settle.creatorShareBps < 0 || s.settle.creatorShareBps > bpsDenominator {
		return nil, fmt.Errorf("creator share must be between 0 and %d basis points", bpsDenominator)
	}
	if s.uploadFee < 0 {
		return nil, fmt.Errorf("upload fee must not be negative")
	}
	if s.rentalDuration <= 0 {
		return nil, fmt.Errorf("rental duration must be positive")
	}
	switch s.registryMode {
	case RegistryModeLocal, RegistryModeForwarding:
	default:
		return nil, fmt.Errorf("unknown registry mode %q", s.registryMode)
	}

	if err := s.repository.GrantRole(context.Background(), RoleAdmin, s.rootAdmin); err != nil {
		return nil, fmt.Errorf("grant root admin: %w", err)
	}

	return s, nil
}

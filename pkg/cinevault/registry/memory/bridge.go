package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Kaustubh-1-7/CineVault/pkg/cinevault"
)

// Bridge is an in-process cinevault.RegistryBridge. It records registration
// announcements and mints deterministic license identifiers. Failure
// injection hooks make it suitable for exercising abort paths in tests.
type Bridge struct {
	mu          sync.Mutex
	registered  map[int64]int // content id -> announcement count
	minted      int64
	RegisterErr error // when set, Register fails with this error
	MintErr     error // when set, MintLicense fails with this error

	// OnMintLicense, when set, runs before a successful mint. Tests use it
	// to simulate a registry that calls back into the service.
	OnMintLicense func(ctx context.Context, req cinevault.MintLicenseRequest)
}

// New creates a new in-process registry bridge
func New() *Bridge {
	return &Bridge{registered: make(map[int64]int)}
}

func (b *Bridge) Register(ctx context.Context, req cinevault.RegisterRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.RegisterErr != nil {
		return fmt.Errorf("%w: %v", cinevault.ErrRegistryUnavailable, b.RegisterErr)
	}
	// Registration announcements are idempotent on the registry side; a
	// repeat for the same content is counted but changes nothing.
	b.registered[req.ContentID]++
	return nil
}

func (b *Bridge) MintLicense(ctx context.Context, req cinevault.MintLicenseRequest) (string, error) {
	b.mu.Lock()
	if b.MintErr != nil {
		b.mu.Unlock()
		return "", fmt.Errorf("%w: %v", cinevault.ErrRegistryUnavailable, b.MintErr)
	}
	hook := b.OnMintLicense
	b.minted++
	id := fmt.Sprintf("license-%d", b.minted)
	b.mu.Unlock()

	if hook != nil {
		hook(ctx, req)
	}
	return id, nil
}

// RegisterCount reports how many times the given content has been announced.
func (b *Bridge) RegisterCount(contentID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registered[contentID]
}

// MintedCount reports how many license tokens have been minted.
func (b *Bridge) MintedCount() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.minted
}

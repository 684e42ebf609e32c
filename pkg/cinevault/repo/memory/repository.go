package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Kaustubh-1-7/CineVault/pkg/cinevault"
)

// Repository implements cinevault.Repository using in-memory storage.
// Content ids are dense and monotonically increasing from 1. Composite
// writes (record plus settlement batch) validate everything before mutating,
// so a failed call leaves no partial state.
type Repository struct {
	mu     sync.RWMutex
	nextID int64

	contents      map[int64]*cinevault.ContentItem
	likes         map[int64]map[string]struct{}
	rentalHistory map[int64][]*cinevault.RentalRecord
	latestRental  map[string]*cinevault.RentalRecord // "renter\x00contentID"
	balances      map[string]map[string]int64        // token -> account -> balance
	roles         map[cinevault.Role]map[string]struct{}
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		nextID:        1,
		contents:      make(map[int64]*cinevault.ContentItem),
		likes:         make(map[int64]map[string]struct{}),
		rentalHistory: make(map[int64][]*cinevault.RentalRecord),
		latestRental:  make(map[string]*cinevault.RentalRecord),
		balances:      make(map[string]map[string]int64),
		roles:         make(map[cinevault.Role]map[string]struct{}),
	}
}

func rentalKey(renter string, contentID int64) string {
	return fmt.Sprintf("%s\x00%d", renter, contentID)
}

// applyEntriesLocked validates the batch entry by entry against running
// balances and applies it only if no intermediate balance goes negative.
// Entries are not netted: a debit beyond the current balance fails even when
// a later entry in the batch would cover it, matching the per-statement check
// constraint in the postgres repository. Callers must hold the write lock.
func (r *Repository) applyEntriesLocked(entries []cinevault.LedgerEntry) error {
	// First pass: walk the batch in order without mutating.
	type key struct{ token, account string }
	result := make(map[key]int64, len(entries))
	for _, e := range entries {
		k := key{e.Token, e.Account}
		if _, ok := result[k]; !ok {
			result[k] = r.balances[e.Token][e.Account]
		}
		result[k] += e.Delta
		if result[k] < 0 {
			return fmt.Errorf("%w: account %s token %q would drop to %d",
				cinevault.ErrInsufficientFunds, e.Account, e.Token, result[k])
		}
	}

	// Second pass: commit.
	for k, balance := range result {
		if r.balances[k.token] == nil {
			r.balances[k.token] = make(map[string]int64)
		}
		r.balances[k.token][k.account] = balance
	}
	return nil
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *cinevault.ContentItem, settlement []cinevault.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.applyEntriesLocked(settlement); err != nil {
		return err
	}

	content.ID = r.nextID
	r.nextID++

	contentCopy := *content
	r.contents[content.ID] = &contentCopy
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id int64) (*cinevault.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, cinevault.ErrContentNotFound
	}
	contentCopy := *content
	return &contentCopy, nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *cinevault.ContentItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[content.ID]; !exists {
		return cinevault.ErrContentNotFound
	}
	contentCopy := *content
	r.contents[content.ID] = &contentCopy
	return nil
}

func (r *Repository) ListContent(ctx context.Context, req cinevault.ListContentRequest) ([]*cinevault.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*cinevault.ContentItem
	for _, content := range r.contents {
		if req.Status != "" && content.Status != req.Status {
			continue
		}
		if req.Creator != "" && content.Creator != req.Creator {
			continue
		}
		contentCopy := *content
		result = append(result, &contentCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Like operations

func (r *Repository) AddLike(ctx context.Context, contentID int64, account string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, exists := r.contents[contentID]
	if !exists {
		return cinevault.ErrContentNotFound
	}
	if _, liked := r.likes[contentID][account]; liked {
		return cinevault.ErrAlreadyLiked
	}
	if r.likes[contentID] == nil {
		r.likes[contentID] = make(map[string]struct{})
	}
	r.likes[contentID][account] = struct{}{}
	content.Likes++
	return nil
}

func (r *Repository) HasLiked(ctx context.Context, contentID int64, account string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, liked := r.likes[contentID][account]
	return liked, nil
}

// Rental operations

func (r *Repository) CreateRental(ctx context.Context, record *cinevault.RentalRecord, settlement []cinevault.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, exists := r.contents[record.ContentID]
	if !exists {
		return cinevault.ErrContentNotFound
	}

	if err := r.applyEntriesLocked(settlement); err != nil {
		return err
	}

	recordCopy := *record
	r.rentalHistory[record.ContentID] = append(r.rentalHistory[record.ContentID], &recordCopy)
	r.latestRental[rentalKey(record.Renter, record.ContentID)] = &recordCopy
	content.Rentals++
	content.UpdatedAt = record.IssuedAt
	return nil
}

func (r *Repository) GetLatestRental(ctx context.Context, renter string, contentID int64) (*cinevault.RentalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.latestRental[rentalKey(renter, contentID)]
	if !exists {
		return nil, cinevault.ErrRentalNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

func (r *Repository) ListRentalsByContent(ctx context.Context, contentID int64) ([]*cinevault.RentalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := r.rentalHistory[contentID]
	result := make([]*cinevault.RentalRecord, 0, len(history))
	for _, record := range history {
		recordCopy := *record
		result = append(result, &recordCopy)
	}
	return result, nil
}

// Ledger operations

func (r *Repository) BalanceOf(ctx context.Context, token, account string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.balances[token][account], nil
}

func (r *Repository) ApplyEntries(ctx context.Context, entries []cinevault.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.applyEntriesLocked(entries)
}

// Role operations

func (r *Repository) GrantRole(ctx context.Context, role cinevault.Role, account string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roles[role] == nil {
		r.roles[role] = make(map[string]struct{})
	}
	r.roles[role][account] = struct{}{}
	return nil
}

func (r *Repository) RevokeRole(ctx context.Context, role cinevault.Role, account string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.roles[role], account)
	return nil
}

func (r *Repository) HasRole(ctx context.Context, role cinevault.Role, account string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.roles[role][account]
	return ok, nil
}

func (r *Repository) ListRoleMembers(ctx context.Context, role cinevault.Role) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]string, 0, len(r.roles[role]))
	for account := range r.roles[role] {
		members = append(members, account)
	}
	sort.Strings(members)
	return members, nil
}

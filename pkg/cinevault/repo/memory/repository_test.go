package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kaustubh-1-7/CineVault/pkg/cinevault"
)

func newContent(creator string) *cinevault.ContentItem {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &cinevault.ContentItem{
		Creator:     creator,
		TrailerURI:  "ipfs://trailer",
		MetadataURI: "ipfs://metadata",
		Price:       100,
		Status:      cinevault.ContentStatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestCreateContentAssignsDenseIDs(t *testing.T) {
	ctx := context.Background()
	repo := New()

	first := newContent("alice")
	require.NoError(t, repo.CreateContent(ctx, first, nil))
	second := newContent("bob")
	require.NoError(t, repo.CreateContent(ctx, second, nil))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func TestCreateContentAtomicWithSettlement(t *testing.T) {
	ctx := context.Background()
	repo := New()

	// The payer has nothing, so the batch must fail and the content must not
	// exist afterwards.
	entries := []cinevault.LedgerEntry{
		{Token: cinevault.NativeToken, Account: "alice", Delta: -10},
		{Token: cinevault.NativeToken, Account: cinevault.PlatformAccount, Delta: 10},
	}
	err := repo.CreateContent(ctx, newContent("alice"), entries)
	assert.ErrorIs(t, err, cinevault.ErrInsufficientFunds)

	_, err = repo.GetContent(ctx, 1)
	assert.ErrorIs(t, err, cinevault.ErrContentNotFound)

	balance, err := repo.BalanceOf(ctx, cinevault.NativeToken, cinevault.PlatformAccount)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	// A failed create must not burn an id.
	ok := newContent("alice")
	require.NoError(t, repo.CreateContent(ctx, ok, nil))
	assert.Equal(t, int64(1), ok.ID)
}

func TestGetContentReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := New()

	content := newContent("alice")
	require.NoError(t, repo.CreateContent(ctx, content, nil))

	got, err := repo.GetContent(ctx, content.ID)
	require.NoError(t, err)
	got.Status = cinevault.ContentStatusRejected

	again, err := repo.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, cinevault.ContentStatusSubmitted, again.Status)
}

func TestUpdateContent(t *testing.T) {
	ctx := context.Background()
	repo := New()

	content := newContent("alice")
	require.NoError(t, repo.CreateContent(ctx, content, nil))

	content.Status = cinevault.ContentStatusApproved
	require.NoError(t, repo.UpdateContent(ctx, content))

	got, err := repo.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, cinevault.ContentStatusApproved, got.Status)

	missing := newContent("bob")
	missing.ID = 99
	assert.ErrorIs(t, repo.UpdateContent(ctx, missing), cinevault.ErrContentNotFound)
}

func TestListContentFilters(t *testing.T) {
	ctx := context.Background()
	repo := New()

	a := newContent("alice")
	require.NoError(t, repo.CreateContent(ctx, a, nil))
	b := newContent("bob")
	require.NoError(t, repo.CreateContent(ctx, b, nil))
	a.Status = cinevault.ContentStatusApproved
	require.NoError(t, repo.UpdateContent(ctx, a))

	all, err := repo.ListContent(ctx, cinevault.ListContentRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, int64(2), all[1].ID)

	approved, err := repo.ListContent(ctx, cinevault.ListContentRequest{Status: cinevault.ContentStatusApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, a.ID, approved[0].ID)

	byCreator, err := repo.ListContent(ctx, cinevault.ListContentRequest{Creator: "bob"})
	require.NoError(t, err)
	require.Len(t, byCreator, 1)
	assert.Equal(t, b.ID, byCreator[0].ID)
}

func TestAddLike(t *testing.T) {
	ctx := context.Background()
	repo := New()

	content := newContent("alice")
	require.NoError(t, repo.CreateContent(ctx, content, nil))

	require.NoError(t, repo.AddLike(ctx, content.ID, "bob"))
	assert.ErrorIs(t, repo.AddLike(ctx, content.ID, "bob"), cinevault.ErrAlreadyLiked)
	require.NoError(t, repo.AddLike(ctx, content.ID, "carol"))

	got, err := repo.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Likes)

	liked, err := repo.HasLiked(ctx, content.ID, "bob")
	require.NoError(t, err)
	assert.True(t, liked)

	assert.ErrorIs(t, repo.AddLike(ctx, 99, "bob"), cinevault.ErrContentNotFound)
}

func newRental(contentID int64, renter string, issued time.Time) *cinevault.RentalRecord {
	return &cinevault.RentalRecord{
		ID:         uuid.New(),
		ContentID:  contentID,
		Renter:     renter,
		AmountPaid: 100,
		IssuedAt:   issued,
		ExpiresAt:  issued.Add(72 * time.Hour),
	}
}

func TestCreateRental(t *testing.T) {
	ctx := context.Background()
	repo := New()

	content := newContent("alice")
	require.NoError(t, repo.CreateContent(ctx, content, nil))
	require.NoError(t, repo.ApplyEntries(ctx, []cinevault.LedgerEntry{
		{Token: cinevault.NativeToken, Account: "bob", Delta: 200},
	}))

	issued := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	first := newRental(content.ID, "bob", issued)
	entries := []cinevault.LedgerEntry{
		{Token: cinevault.NativeToken, Account: "bob", Delta: -100},
		{Token: cinevault.NativeToken, Account: "alice", Delta: 80},
		{Token: cinevault.NativeToken, Account: cinevault.PlatformAccount, Delta: 20},
	}
	require.NoError(t, repo.CreateRental(ctx, first, entries))

	second := newRental(content.ID, "bob", issued.Add(time.Hour))
	require.NoError(t, repo.CreateRental(ctx, second, entries))

	// History keeps both, the latest lookup sees only the second.
	history, err := repo.ListRentalsByContent(ctx, content.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, second.ID, history[1].ID)

	latest, err := repo.GetLatestRental(ctx, "bob", content.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, second.ExpiresAt, latest.ExpiresAt)

	got, err := repo.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Rentals)

	balance, err := repo.BalanceOf(ctx, cinevault.NativeToken, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestCreateRentalAtomicWithSettlement(t *testing.T) {
	ctx := context.Background()
	repo := New()

	content := newContent("alice")
	require.NoError(t, repo.CreateContent(ctx, content, nil))

	record := newRental(content.ID, "bob", time.Now().UTC())
	entries := []cinevault.LedgerEntry{
		{Token: cinevault.NativeToken, Account: "bob", Delta: -100},
		{Token: cinevault.NativeToken, Account: "alice", Delta: 100},
	}
	err := repo.CreateRental(ctx, record, entries)
	assert.ErrorIs(t, err, cinevault.ErrInsufficientFunds)

	// No record, no counter bump, no balance motion.
	_, err = repo.GetLatestRental(ctx, "bob", content.ID)
	assert.ErrorIs(t, err, cinevault.ErrRentalNotFound)

	got, err := repo.GetContent(ctx, content.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Rentals)

	balance, err := repo.BalanceOf(ctx, cinevault.NativeToken, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestCreateRentalUnknownContent(t *testing.T) {
	ctx := context.Background()
	repo := New()

	record := newRental(42, "bob", time.Now().UTC())
	assert.ErrorIs(t, repo.CreateRental(ctx, record, nil), cinevault.ErrContentNotFound)
}

func TestApplyEntries(t *testing.T) {
	ctx := context.Background()
	repo := New()

	t.Run("batch is all or nothing", func(t *testing.T) {
		require.NoError(t, repo.ApplyEntries(ctx, []cinevault.LedgerEntry{
			{Token: cinevault.NativeToken, Account: "alice", Delta: 50},
		}))

		err := repo.ApplyEntries(ctx, []cinevault.LedgerEntry{
			{Token: cinevault.NativeToken, Account: "alice", Delta: -30},
			{Token: cinevault.NativeToken, Account: "bob", Delta: -5},
		})
		assert.ErrorIs(t, err, cinevault.ErrInsufficientFunds)

		balance, err := repo.BalanceOf(ctx, cinevault.NativeToken, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(50), balance)
	})

	t.Run("debit beyond balance fails even when refunded later in the batch", func(t *testing.T) {
		repo := New()
		require.NoError(t, repo.ApplyEntries(ctx, []cinevault.LedgerEntry{
			{Token: cinevault.NativeToken, Account: "alice", Delta: 10},
		}))

		// Netting would let this through: -1000 + 990 leaves alice at 0.
		// The debit itself must be covered, so the batch fails.
		err := repo.ApplyEntries(ctx, []cinevault.LedgerEntry{
			{Token: cinevault.NativeToken, Account: "alice", Delta: -1000},
			{Token: cinevault.NativeToken, Account: "alice", Delta: 990},
			{Token: cinevault.NativeToken, Account: cinevault.PlatformAccount, Delta: 10},
		})
		assert.ErrorIs(t, err, cinevault.ErrInsufficientFunds)

		balance, err := repo.BalanceOf(ctx, cinevault.NativeToken, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(10), balance)
	})

	t.Run("entries for the same account accumulate within a batch", func(t *testing.T) {
		repo := New()
		// Debit then refund in one batch: fine as long as the net stays
		// non-negative against the starting balance.
		require.NoError(t, repo.ApplyEntries(ctx, []cinevault.LedgerEntry{
			{Token: cinevault.NativeToken, Account: "carol", Delta: 100},
		}))
		require.NoError(t, repo.ApplyEntries(ctx, []cinevault.LedgerEntry{
			{Token: cinevault.NativeToken, Account: "carol", Delta: -100},
			{Token: cinevault.NativeToken, Account: "carol", Delta: 40},
		}))

		balance, err := repo.BalanceOf(ctx, cinevault.NativeToken, "carol")
		require.NoError(t, err)
		assert.Equal(t, int64(40), balance)
	})

	t.Run("tokens are isolated ledgers", func(t *testing.T) {
		repo := New()
		require.NoError(t, repo.ApplyEntries(ctx, []cinevault.LedgerEntry{
			{Token: "vUSD", Account: "alice", Delta: 10},
		}))

		native, err := repo.BalanceOf(ctx, cinevault.NativeToken, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(0), native)

		token, err := repo.BalanceOf(ctx, "vUSD", "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(10), token)
	})
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	repo := New()

	has, err := repo.HasRole(ctx, cinevault.RoleModerator, "mod")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.GrantRole(ctx, cinevault.RoleModerator, "mod"))
	require.NoError(t, repo.GrantRole(ctx, cinevault.RoleModerator, "mod2"))

	has, err = repo.HasRole(ctx, cinevault.RoleModerator, "mod")
	require.NoError(t, err)
	assert.True(t, has)

	members, err := repo.ListRoleMembers(ctx, cinevault.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, []string{"mod", "mod2"}, members)

	require.NoError(t, repo.RevokeRole(ctx, cinevault.RoleModerator, "mod"))
	has, err = repo.HasRole(ctx, cinevault.RoleModerator, "mod")
	require.NoError(t, err)
	assert.False(t, has)
}

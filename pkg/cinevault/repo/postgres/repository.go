package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kaustubh-1-7/CineVault/pkg/cinevault"
)

// Repository implements cinevault.Repository using PostgreSQL. Composite
// writes (record plus settlement batch) run in a single transaction; a
// violated balance constraint rolls the whole transaction back.
type Repository struct {
	pool *pgxpool.Pool
}

// NewWithPool creates a new PostgreSQL repository with a connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// handlePostgresError translates driver errors into domain errors where a
// mapping exists.
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.ConstraintName == "content_like_pkey" {
				return cinevault.ErrAlreadyLiked
			}
			return fmt.Errorf("duplicate entry in %s", operation)
		case "23514": // check_violation
			if pgErr.ConstraintName == "balance_amount_check" {
				return cinevault.ErrInsufficientFunds
			}
		case "23503": // foreign_key_violation
			return cinevault.ErrContentNotFound
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		}
		return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return cinevault.ErrContentNotFound
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// applyEntriesTx applies a settlement batch inside the given transaction.
// The balance table carries a non-negative check constraint, so an overdraft
// fails the statement and the caller rolls back.
func (r *Repository) applyEntriesTx(ctx context.Context, tx pgx.Tx, entries []cinevault.LedgerEntry) error {
	const query = `
		INSERT INTO balance (token, account, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (token, account)
		DO UPDATE SET amount = balance.amount + EXCLUDED.amount`

	for _, e := range entries {
		if _, err := tx.Exec(ctx, query, e.Token, e.Account, e.Delta); err != nil {
			return r.handlePostgresError("apply ledger entry", err)
		}
	}
	return nil
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *cinevault.ContentItem, settlement []cinevault.LedgerEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("create content", err)
	}
	defer tx.Rollback(ctx)

	if err := r.applyEntriesTx(ctx, tx, settlement); err != nil {
		return err
	}

	// Ids must stay dense, so the next id derives from the current maximum
	// rather than from a sequence (sequences burn values on rollback).
	// Writers are serialized in-process by the service's call guard; a
	// concurrent insert from another instance computes the same id, loses on
	// the primary key, and rolls back without burning a value.
	const query = `
		INSERT INTO content (
			id, creator, trailer_uri, metadata_uri, price, payment_token,
			status, likes, rentals, registry_item_id, registry_license_terms_id,
			created_at, updated_at
		)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6, 0, 0, $7, $8, $9, $10
		FROM content
		RETURNING id`

	err = tx.QueryRow(ctx, query,
		content.Creator, content.TrailerURI, content.MetadataURI,
		content.Price, content.PaymentToken, content.Status,
		content.RegistryItemID, content.RegistryLicenseTermsID,
		content.CreatedAt, content.UpdatedAt,
	).Scan(&content.ID)
	if err != nil {
		return r.handlePostgresError("create content", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("create content", err)
	}
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id int64) (*cinevault.ContentItem, error) {
	const query = `
		SELECT id, creator, trailer_uri, metadata_uri, price, payment_token,
		       status, likes, rentals, registry_item_id, registry_license_terms_id,
		       created_at, updated_at
		FROM content
		WHERE id = $1`

	content := &cinevault.ContentItem{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&content.ID, &content.Creator, &content.TrailerURI, &content.MetadataURI,
		&content.Price, &content.PaymentToken, &content.Status,
		&content.Likes, &content.Rentals,
		&content.RegistryItemID, &content.RegistryLicenseTermsID,
		&content.CreatedAt, &content.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cinevault.ErrContentNotFound
		}
		return nil, r.handlePostgresError("get content", err)
	}
	return content, nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *cinevault.ContentItem) error {
	const query = `
		UPDATE content
		SET creator = $2, trailer_uri = $3, metadata_uri = $4, price = $5,
		    payment_token = $6, status = $7, likes = $8, rentals = $9,
		    registry_item_id = $10, registry_license_terms_id = $11,
		    updated_at = $12
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		content.ID, content.Creator, content.TrailerURI, content.MetadataURI,
		content.Price, content.PaymentToken, content.Status,
		content.Likes, content.Rentals,
		content.RegistryItemID, content.RegistryLicenseTermsID,
		content.UpdatedAt,
	)
	if err != nil {
		return r.handlePostgresError("update content", err)
	}
	if tag.RowsAffected() == 0 {
		return cinevault.ErrContentNotFound
	}
	return nil
}

func (r *Repository) ListContent(ctx context.Context, req cinevault.ListContentRequest) ([]*cinevault.ContentItem, error) {
	query := `
		SELECT id, creator, trailer_uri, metadata_uri, price, payment_token,
		       status, likes, rentals, registry_item_id, registry_license_terms_id,
		       created_at, updated_at
		FROM content
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR creator = $2)
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, string(req.Status), req.Creator)
	if err != nil {
		return nil, r.handlePostgresError("list content", err)
	}
	defer rows.Close()

	var result []*cinevault.ContentItem
	for rows.Next() {
		content := &cinevault.ContentItem{}
		err := rows.Scan(
			&content.ID, &content.Creator, &content.TrailerURI, &content.MetadataURI,
			&content.Price, &content.PaymentToken, &content.Status,
			&content.Likes, &content.Rentals,
			&content.RegistryItemID, &content.RegistryLicenseTermsID,
			&content.CreatedAt, &content.UpdatedAt,
		)
		if err != nil {
			return nil, r.handlePostgresError("list content", err)
		}
		result = append(result, content)
	}
	return result, rows.Err()
}

// Like operations

func (r *Repository) AddLike(ctx context.Context, contentID int64, account string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("add like", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO content_like (content_id, account) VALUES ($1, $2)`,
		contentID, account,
	); err != nil {
		return r.handlePostgresError("add like", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE content SET likes = likes + 1 WHERE id = $1`, contentID)
	if err != nil {
		return r.handlePostgresError("add like", err)
	}
	if tag.RowsAffected() == 0 {
		return cinevault.ErrContentNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("add like", err)
	}
	return nil
}

func (r *Repository) HasLiked(ctx context.Context, contentID int64, account string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM content_like WHERE content_id = $1 AND account = $2)`,
		contentID, account,
	).Scan(&exists)
	if err != nil {
		return false, r.handlePostgresError("has liked", err)
	}
	return exists, nil
}

// Rental operations

func (r *Repository) CreateRental(ctx context.Context, record *cinevault.RentalRecord, settlement []cinevault.LedgerEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("create rental", err)
	}
	defer tx.Rollback(ctx)

	if err := r.applyEntriesTx(ctx, tx, settlement); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO rental (
			id, content_id, renter, amount_paid, payment_token,
			license_token_id, issued_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID, record.ContentID, record.Renter, record.AmountPaid,
		record.PaymentToken, record.LicenseTokenID, record.IssuedAt, record.ExpiresAt,
	); err != nil {
		return r.handlePostgresError("create rental", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO rental_latest (renter, content_id, rental_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (renter, content_id) DO UPDATE SET rental_id = EXCLUDED.rental_id`,
		record.Renter, record.ContentID, record.ID,
	); err != nil {
		return r.handlePostgresError("create rental", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE content SET rentals = rentals + 1, updated_at = $2 WHERE id = $1`,
		record.ContentID, record.IssuedAt,
	)
	if err != nil {
		return r.handlePostgresError("create rental", err)
	}
	if tag.RowsAffected() == 0 {
		return cinevault.ErrContentNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("create rental", err)
	}
	return nil
}

func (r *Repository) GetLatestRental(ctx context.Context, renter string, contentID int64) (*cinevault.RentalRecord, error) {
	const query = `
		SELECT r.id, r.content_id, r.renter, r.amount_paid, r.payment_token,
		       r.license_token_id, r.issued_at, r.expires_at
		FROM rental_latest l
		JOIN rental r ON r.id = l.rental_id
		WHERE l.renter = $1 AND l.content_id = $2`

	record := &cinevault.RentalRecord{}
	err := r.pool.QueryRow(ctx, query, renter, contentID).Scan(
		&record.ID, &record.ContentID, &record.Renter, &record.AmountPaid,
		&record.PaymentToken, &record.LicenseTokenID, &record.IssuedAt, &record.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cinevault.ErrRentalNotFound
		}
		return nil, r.handlePostgresError("get latest rental", err)
	}
	return record, nil
}

func (r *Repository) ListRentalsByContent(ctx context.Context, contentID int64) ([]*cinevault.RentalRecord, error) {
	const query = `
		SELECT id, content_id, renter, amount_paid, payment_token,
		       license_token_id, issued_at, expires_at
		FROM rental
		WHERE content_id = $1
		ORDER BY issued_at, id`

	rows, err := r.pool.Query(ctx, query, contentID)
	if err != nil {
		return nil, r.handlePostgresError("list rentals", err)
	}
	defer rows.Close()

	result := make([]*cinevault.RentalRecord, 0)
	for rows.Next() {
		record := &cinevault.RentalRecord{}
		err := rows.Scan(
			&record.ID, &record.ContentID, &record.Renter, &record.AmountPaid,
			&record.PaymentToken, &record.LicenseTokenID, &record.IssuedAt, &record.ExpiresAt,
		)
		if err != nil {
			return nil, r.handlePostgresError("list rentals", err)
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

// Ledger operations

func (r *Repository) BalanceOf(ctx context.Context, token, account string) (int64, error) {
	var amount int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(
			(SELECT amount FROM balance WHERE token = $1 AND account = $2), 0)`,
		token, account,
	).Scan(&amount)
	if err != nil {
		return 0, r.handlePostgresError("balance of", err)
	}
	return amount, nil
}

func (r *Repository) ApplyEntries(ctx context.Context, entries []cinevault.LedgerEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.handlePostgresError("apply entries", err)
	}
	defer tx.Rollback(ctx)

	if err := r.applyEntriesTx(ctx, tx, entries); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return r.handlePostgresError("apply entries", err)
	}
	return nil
}

// Role operations

func (r *Repository) GrantRole(ctx context.Context, role cinevault.Role, account string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_member (role, account)
		VALUES ($1, $2)
		ON CONFLICT (role, account) DO NOTHING`,
		string(role), account,
	)
	if err != nil {
		return r.handlePostgresError("grant role", err)
	}
	return nil
}

func (r *Repository) RevokeRole(ctx context.Context, role cinevault.Role, account string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM role_member WHERE role = $1 AND account = $2`,
		string(role), account,
	)
	if err != nil {
		return r.handlePostgresError("revoke role", err)
	}
	return nil
}

func (r *Repository) HasRole(ctx context.Context, role cinevault.Role, account string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM role_member WHERE role = $1 AND account = $2)`,
		string(role), account,
	).Scan(&exists)
	if err != nil {
		return false, r.handlePostgresError("has role", err)
	}
	return exists, nil
}

func (r *Repository) ListRoleMembers(ctx context.Context, role cinevault.Role) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT account FROM role_member WHERE role = $1 ORDER BY account`,
		string(role),
	)
	if err != nil {
		return nil, r.handlePostgresError("list role members", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var account string
		if err := rows.Scan(&account); err != nil {
			return nil, r.handlePostgresError("list role members", err)
		}
		members = append(members, account)
	}
	return members, rows.Err()
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/monkeyprint/listings/libs/db"
	"github.com/monkeyprint/listings/services/listing-service/internal/availability"
	"github.com/monkeyprint/listings/services/listing-service/internal/model"
	"github.com/monkeyprint/listings/services/listing-service/internal/outbox"
)

var ErrNotFound = errors.New("listing not found")

const listingColumns = `
	l.id, l.admin_id, l.title, l.description, l.category, l.type, l.area, l.rooms, l.bathrooms,
	l.price_min, l.price_max, l.city_id, l.governorate, l.address, l.images, l.phone_numbers,
	l.start_date, l.end_date, l.is_deleted, l.created_at, l.updated_at`

type ListingRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewListingRepository(pool *db.Pool, outboxRepo *outbox.Repository) *ListingRepository {
	return &ListingRepository{pool: pool, outbox: outboxRepo}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (model.Listing, error) {
	var l model.Listing
	err := row.Scan(
		&l.ID,
		&l.AdminID,
		&l.Title,
		&l.Description,
		&l.Category,
		&l.Type,
		&l.Area,
		&l.Rooms,
		&l.Bathrooms,
		&l.PriceMin,
		&l.PriceMax,
		&l.CityID,
		&l.Governorate,
		&l.Address,
		&l.Images,
		&l.PhoneNumbers,
		&l.StartDate,
		&l.EndDate,
		&l.IsDeleted,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	return l, err
}

func collectListings(rows pgx.Rows) ([]model.Listing, error) {
	defer rows.Close()

	var out []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) (string, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	w := l.Window()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO listings
			(id, admin_id, title, description, category, type, area, rooms, bathrooms,
			 price_min, price_max, city_id, governorate, address, images, phone_numbers, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`, l.ID, l.AdminID, l.Title, l.Description, l.Category, l.Type, l.Area, l.Rooms, l.Bathrooms,
		l.PriceMin, l.PriceMax, l.CityID, l.Governorate, l.Address, nonNil(l.Images), nonNil(l.PhoneNumbers),
		w.Start, w.End).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("insert listing: %w", err)
	}
	return l.ID, nil
}

func (r *ListingRepository) Get(ctx context.Context, id string) (model.Listing, error) {
	l, err := scanListing(r.pool.QueryRow(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		WHERE l.id = $1 AND l.is_deleted = false
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Listing{}, ErrNotFound
	}
	return l, err
}

// Search returns one page of matches plus the total match count.
func (r *ListingRepository) Search(ctx context.Context, f SearchFilter) ([]model.Listing, int, error) {
	f = f.Normalize()
	qb := applyFilters(f)
	where := qb.where()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM listings l `+where, qb.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	limit := qb.arg(f.Limit)
	offset := qb.arg(f.Offset())
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		`+where+`
		ORDER BY l.created_at DESC
		LIMIT `+limit+` OFFSET `+offset, qb.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search listings: %w", err)
	}
	items, err := collectListings(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("scan listings: %w", err)
	}
	return items, total, nil
}

// ListByAdmin returns one page of the listings owned by adminID, newest first.
func (r *ListingRepository) ListByAdmin(ctx context.Context, adminID string, limit, offset int) ([]model.Listing, error) {
	if limit <= 0 || limit > MaxPageSize*10 {
		limit = MaxPageSize * 10
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		WHERE l.admin_id = $1 AND l.is_deleted = false
		ORDER BY l.created_at DESC, l.id
		LIMIT $2 OFFSET $3
	`, adminID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list admin listings: %w", err)
	}
	return collectListings(rows)
}

// UpdateWindow replaces both window bounds. An empty adminID skips the ownership check.
func (r *ListingRepository) UpdateWindow(ctx context.Context, id, adminID string, w availability.Window) (model.Listing, error) {
	var updated model.Listing
	err := r.pool.InTx(ctx, func(tx pgx.Tx) error {
		l, err := scanListing(tx.QueryRow(ctx, `
			UPDATE listings l
			SET start_date = $3, end_date = $4, updated_at = now()
			WHERE l.id = $1 AND l.is_deleted = false AND ($2 = '' OR l.admin_id::text = $2)
			RETURNING `+listingColumns,
			id, adminID, w.Start, w.End))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("update window: %w", err)
		}

		evt, err := outbox.WindowUpdated(l.ID, l.Window())
		if err != nil {
			return err
		}
		if err := r.outbox.Insert(ctx, tx, evt); err != nil {
			return fmt.Errorf("insert outbox: %w", err)
		}
		updated = l
		return nil
	})
	return updated, err
}

func (r *ListingRepository) SoftDelete(ctx context.Context, id, adminID string) error {
	return r.pool.InTx(ctx, func(tx pgx.Tx) error {
		var deletedAt time.Time
		err := tx.QueryRow(ctx, `
			UPDATE listings l
			SET is_deleted = true, updated_at = now()
			WHERE l.id = $1 AND l.is_deleted = false AND ($2 = '' OR l.admin_id::text = $2)
			RETURNING l.updated_at
		`, id, adminID).Scan(&deletedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("delete listing: %w", err)
		}

		evt, err := outbox.Deleted(id, deletedAt)
		if err != nil {
			return err
		}
		return r.outbox.Insert(ctx, tx, evt)
	})
}

func (r *ListingRepository) FindExpiredWindows(ctx context.Context, ref time.Time) ([]model.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings l
		WHERE l.is_deleted = false
			AND l.end_date IS NOT NULL
			AND l.end_date < $1
		ORDER BY l.end_date ASC
	`, availability.Day(ref))
	if err != nil {
		return nil, err
	}
	return collectListings(rows)
}

// ClearWindow nulls both dates if the window is still expired as of ref. The row lock makes
// a racing sweep wait and then see the cleared row, so only one of them reports true.
// The cleared event is written in the same transaction.
func (r *ListingRepository) ClearWindow(ctx context.Context, id string, ref time.Time) (bool, error) {
	day := availability.Day(ref)
	var cleared bool
	err := r.pool.InTx(ctx, func(tx pgx.Tx) error {
		var title string
		var expiredEnd time.Time
		err := tx.QueryRow(ctx, `
			SELECT title, end_date
			FROM listings
			WHERE id = $1 AND is_deleted = false AND end_date IS NOT NULL AND end_date < $2
			FOR UPDATE
		`, id, day).Scan(&title, &expiredEnd)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		var clearedAt time.Time
		if err := tx.QueryRow(ctx, `
			UPDATE listings
			SET start_date = NULL, end_date = NULL, updated_at = now()
			WHERE id = $1
			RETURNING updated_at
		`, id).Scan(&clearedAt); err != nil {
			return err
		}

		evt, err := outbox.WindowCleared(id, title, expiredEnd, clearedAt)
		if err != nil {
			return err
		}
		if err := r.outbox.Insert(ctx, tx, evt); err != nil {
			return fmt.Errorf("insert outbox: %w", err)
		}
		cleared = true
		return nil
	})
	return cleared, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

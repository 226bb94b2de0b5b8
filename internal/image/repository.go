// Package image manages stored image assets: metadata persistence, payload
// storage, and the consistency protocol between the two.
package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Image is the metadata record for one stored asset. The payload itself
// lives in the object store under ObjectKey.
type Image struct {
	ID           int64     `json:"id"`
	StoredName   string    `json:"stored_name"`
	OriginalName string    `json:"original_name"`
	SizeBytes    int64     `json:"size_bytes"`
	MimeType     string    `json:"mime_type"`
	ObjectKey    string    `json:"object_key"`
	OwnerID      *int64    `json:"owner_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ErrNotFound is returned when no metadata record exists for the id.
// A connection failure is never folded into it, so callers can tell a
// backend outage from absent data.
var ErrNotFound = errors.New("image not found")

// PgRepository handles all image metadata database operations.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PgRepository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

// Create inserts a new metadata row and returns the record with its
// store-assigned id and timestamps.
func (r *PgRepository) Create(ctx context.Context, img *Image) (*Image, error) {
	out := *img
	err := r.db.QueryRow(ctx,
		`INSERT INTO images (stored_name, original_name, size_bytes, mime_type, object_key, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		img.StoredName, img.OriginalName, img.SizeBytes, img.MimeType, img.ObjectKey, img.OwnerID,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert image: %w", err)
	}
	return &out, nil
}

// GetByID fetches a metadata record by id.
func (r *PgRepository) GetByID(ctx context.Context, id int64) (*Image, error) {
	img := &Image{}
	err := r.db.QueryRow(ctx,
		`SELECT id, stored_name, original_name, size_bytes, mime_type, object_key, owner_id, created_at, updated_at
		 FROM images WHERE id = $1`,
		id,
	).Scan(&img.ID, &img.StoredName, &img.OriginalName, &img.SizeBytes,
		&img.MimeType, &img.ObjectKey, &img.OwnerID, &img.CreatedAt, &img.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get image by id: %w", err)
	}
	return img, nil
}

// List returns all metadata records, most recently created first.
func (r *PgRepository) List(ctx context.Context) ([]Image, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, stored_name, original_name, size_bytes, mime_type, object_key, owner_id, created_at, updated_at
		 FROM images
		 ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.StoredName, &img.OriginalName, &img.SizeBytes,
			&img.MimeType, &img.ObjectKey, &img.OwnerID, &img.CreatedAt, &img.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// Delete removes the metadata row for id. Once the row is gone the image
// is gone: this is the authoritative existence boundary.
func (r *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

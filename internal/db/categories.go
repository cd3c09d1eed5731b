package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreateCategory finds an owner's category by exact name, creating
// it when absent. Matching is case-sensitive.
func (q *Queries) GetOrCreateCategory(ctx context.Context, userID pgtype.UUID, name string) (*Category, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO categories (id, user_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, user_id, name`,
		NewUUID(), userID, name)
	return scanCategory(row)
}

// LinkVideoCategory attaches a category to a video. Re-linking is a no-op.
func (q *Queries) LinkVideoCategory(ctx context.Context, videoID, categoryID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO video_categories (video_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, videoID, categoryID)
	return err
}

// UnlinkVideoCategories detaches all categories from a video, ahead of a
// metadata edit that re-attaches the new set.
func (q *Queries) UnlinkVideoCategories(ctx context.Context, videoID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM video_categories WHERE video_id = $1`, videoID)
	return err
}

// ListCategoriesByOwner returns an owner's categories sorted by name.
func (q *Queries) ListCategoriesByOwner(ctx context.Context, userID pgtype.UUID) ([]*Category, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, user_id, name FROM categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListCategoriesForVideo returns the categories attached to one video.
func (q *Queries) ListCategoriesForVideo(ctx context.Context, videoID pgtype.UUID) ([]*Category, error) {
	rows, err := q.db.Query(ctx, `
		SELECT c.id, c.user_id, c.name FROM categories c
		JOIN video_categories vc ON vc.category_id = c.id
		WHERE vc.video_id = $1
		ORDER BY c.name`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteOrphanCategories garbage-collects categories no video references
// anymore. Called after every mutation that can orphan one (video delete,
// metadata edit, user delete). Returns the number removed.
func (q *Queries) DeleteOrphanCategories(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, `
		DELETE FROM categories c
		WHERE NOT EXISTS (
			SELECT 1 FROM video_categories vc WHERE vc.category_id = c.id
		)`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const announcementColumns = `id, title, message, style, is_active, created_at, updated_at`

func scanAnnouncement(row interface{ Scan(dest ...any) error }) (Announcement, error) {
	var a Announcement
	err := row.Scan(&a.ID, &a.Title, &a.Message, &a.Style, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (q *Queries) ListAnnouncements(ctx context.Context) ([]Announcement, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+announcementColumns+` FROM announcements ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var announcements []Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

func (q *Queries) GetAnnouncement(ctx context.Context, id uuid.UUID) (Announcement, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+announcementColumns+` FROM announcements WHERE id = $1`, id)
	return scanAnnouncement(row)
}

// GetLatestActiveAnnouncementForUser returns the newest active announcement
// the user has not dismissed.
func (q *Queries) GetLatestActiveAnnouncementForUser(ctx context.Context, userID uuid.UUID) (Announcement, error) {
	row := q.db.QueryRow(ctx, `
		SELECT `+announcementColumns+`
		FROM announcements
		WHERE is_active = true
		  AND id NOT IN (
			SELECT announcement_id FROM user_dismissed_announcements WHERE user_id = $1
		  )
		ORDER BY created_at DESC
		LIMIT 1`,
		userID,
	)
	return scanAnnouncement(row)
}

type CreateAnnouncementParams struct {
	Title   string
	Message string
	Style   string
}

func (q *Queries) CreateAnnouncement(ctx context.Context, arg CreateAnnouncementParams) (Announcement, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO announcements (title, message, style)
		VALUES ($1, $2, $3)
		RETURNING `+announcementColumns,
		arg.Title, arg.Message, arg.Style,
	)
	return scanAnnouncement(row)
}

type UpdateAnnouncementParams struct {
	ID       uuid.UUID
	Title    string
	Message  string
	Style    string
	IsActive bool
}

func (q *Queries) UpdateAnnouncement(ctx context.Context, arg UpdateAnnouncementParams) (Announcement, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE announcements
		SET title = $2, message = $3, style = $4, is_active = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+announcementColumns,
		arg.ID, arg.Title, arg.Message, arg.Style, arg.IsActive,
	)
	return scanAnnouncement(row)
}

func (q *Queries) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

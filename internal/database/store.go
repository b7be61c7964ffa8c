package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/tonewall/gallery-backend/internal/model"
)

// CandidateCap bounds how many rows the coarse search filter may return.
const CandidateCap = 300

const contentColumns = "id, name, type, media_url, description, category, tags, downloads, created_at, width, height, duration, format, colors"

// Store is the content catalog backed by Postgres.
type Store struct {
	pool *pgxpool.Pool
	log  *logrus.Entry
}

func NewStore(pool *pgxpool.Pool, log *logrus.Entry) *Store {
	return &Store{pool: pool, log: log}
}

// Candidates runs the coarse recall-maximizing filter: a case-insensitive
// substring match on name and description, or an exact-element containment
// match on tags, optionally narrowed to one content type. The result is
// capped and intentionally over-inclusive; the refiner narrows it down.
func (s *Store) Candidates(ctx context.Context, q string, typeFilter *model.ContentType, limit int) ([]*model.ContentRecord, error) {
	if limit <= 0 || limit > CandidateCap {
		limit = CandidateCap
	}

	query := `SELECT ` + contentColumns + ` FROM content WHERE (name ILIKE $1 OR description ILIKE $1 OR $2 = ANY (tags))`
	args := []any{likePattern(q), q}
	if typeFilter != nil {
		args = append(args, *typeFilter)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying search candidates: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Snapshot returns the projection of the whole catalog used by the
// suggestion index. Records without a folder-derived category project their
// content type instead.
func (s *Store) Snapshot(ctx context.Context) ([]model.CatalogEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, COALESCE(NULLIF(category, ''), type), tags FROM content ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying catalog snapshot: %w", err)
	}
	defer rows.Close()

	entries := []model.CatalogEntry{}
	for rows.Next() {
		var entry model.CatalogEntry
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.Category, &entry.Tags); err != nil {
			return nil, fmt.Errorf("scanning catalog entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ListOptions narrows and orders a catalog listing.
type ListOptions struct {
	Type       *model.ContentType
	OrderBy    string
	Descending bool
	Limit      int
}

var orderColumns = map[string]string{
	"created_at": "created_at",
	"downloads":  "downloads",
	"name":       "name",
}

// List returns catalog records with an optional equality filter on type,
// ordered by a whitelisted column. Unknown order columns fall back to
// created_at.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*model.ContentRecord, error) {
	column, ok := orderColumns[opts.OrderBy]
	if !ok {
		column = "created_at"
		opts.Descending = true
	}
	direction := "ASC"
	if opts.Descending {
		direction = "DESC"
	}

	query := `SELECT ` + contentColumns + ` FROM content`
	args := []any{}
	if opts.Type != nil {
		args = append(args, *opts.Type)
		query += fmt.Sprintf(" WHERE type = $%d", len(args))
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id %s", column, direction, direction)
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing content: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *Store) GetByID(ctx context.Context, id int64) (*model.ContentRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+contentColumns+` FROM content WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting content record: %w", err)
	}
	defer rows.Close()

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pgx.ErrNoRows
	}
	return records[0], nil
}

// Insert stores a new record and returns the id assigned by the database.
func (s *Store) Insert(ctx context.Context, rec *model.ContentRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO content (name, type, media_url, description, category, tags, width, height, duration, format, colors)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		rec.Name, rec.Type, rec.MediaURL, rec.Description, rec.Category, tagsOrEmpty(rec.Tags),
		rec.Width, rec.Height, rec.Duration, rec.Format, tagsOrEmpty(rec.Colors),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting content record: %w", err)
	}
	return id, nil
}

// Update replaces the mutable fields of a record by id.
func (s *Store) Update(ctx context.Context, rec *model.ContentRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE content
		 SET name = $2, type = $3, media_url = $4, description = $5, category = $6, tags = $7,
		     width = $8, height = $9, duration = $10, format = $11, colors = $12
		 WHERE id = $1`,
		rec.ID, rec.Name, rec.Type, rec.MediaURL, rec.Description, rec.Category, tagsOrEmpty(rec.Tags),
		rec.Width, rec.Height, rec.Duration, rec.Format, tagsOrEmpty(rec.Colors),
	)
	if err != nil {
		return fmt.Errorf("updating content record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting content record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IncrementDownloads records one consumption of the item. The counter only
// ever moves up.
func (s *Store) IncrementDownloads(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `UPDATE content SET downloads = downloads + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("incrementing download count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanRecords(rows pgx.Rows) ([]*model.ContentRecord, error) {
	records := []*model.ContentRecord{}
	for rows.Next() {
		rec := &model.ContentRecord{}
		err := rows.Scan(
			&rec.ID, &rec.Name, &rec.Type, &rec.MediaURL, &rec.Description, &rec.Category,
			&rec.Tags, &rec.Downloads, &rec.CreatedAt, &rec.Width, &rec.Height, &rec.Duration,
			&rec.Format, &rec.Colors,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning content record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps q for a substring ILIKE match, escaping the LIKE
// metacharacters so user input always matches literally.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

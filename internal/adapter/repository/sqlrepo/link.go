// Package sqlrepo implements the link and access record repositories on top
// of sqlx. Queries use '?' placeholders and are rebound for the connected
// driver, so the same code serves PostgreSQL (pgx) and SQLite.
package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type linkRow struct {
	ID          int64  `db:"id"`
	Code        string `db:"code"`
	OriginalURL string `db:"original_url"`
}

func (r *linkRow) toEntity() *entity.Link {
	return &entity.Link{
		ID:          r.ID,
		Code:        r.Code,
		OriginalURL: r.OriginalURL,
	}
}

// LinkRepository stores links in the links table.
type LinkRepository struct {
	db *sqlx.DB
}

// NewLinkRepository returns a LinkRepository over db. db must be opened with
// one of the drivers in pkg/sqldb.
func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Save(ctx context.Context, code, originalURL string) (*entity.Link, error) {
	const op = "adapter.repository.sqlrepo.LinkRepository.Save"
	const query = `INSERT INTO links (code, original_url) VALUES (?, ?) RETURNING id, code, original_url`

	var link linkRow

	if err := r.db.GetContext(ctx, &link, r.db.Rebind(query), code, originalURL); err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert into links table: %w", op, err)
	}

	return link.toEntity(), nil
}

func (r *LinkRepository) RetrieveByCode(ctx context.Context, code string) (*entity.Link, error) {
	const op = "adapter.repository.sqlrepo.LinkRepository.RetrieveByCode"

	link, err := r.retrieveByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return link.toEntity(), nil
}

func (r *LinkRepository) RetrieveAll(ctx context.Context) ([]entity.Link, error) {
	const op = "adapter.repository.sqlrepo.LinkRepository.RetrieveAll"
	const query = `SELECT id, code, original_url FROM links ORDER BY id`

	var rows []linkRow

	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%s: failed to select from links table: %w", op, err)
	}

	links := make([]entity.Link, 0, len(rows))
	for _, row := range rows {
		links = append(links, *row.toEntity())
	}

	return links, nil
}

func (r *LinkRepository) RemoveByCode(ctx context.Context, code string) (int64, error) {
	const op = "adapter.repository.sqlrepo.LinkRepository.RemoveByCode"
	const query = `DELETE FROM links WHERE code = ?`

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), code)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to delete from links table: %w", op, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get number of affected rows: %w", op, err)
	}

	return rowsAffected, nil
}

func (r *LinkRepository) RetrieveByCodeWithAccessRecords(ctx context.Context, code string) (*entity.Link, error) {
	const op = "adapter.repository.sqlrepo.LinkRepository.RetrieveByCodeWithAccessRecords"
	const query = `SELECT id, link_id, accessed_at, ip_address, user_agent
		FROM access_records
		WHERE link_id = ?
		ORDER BY id`

	row, err := r.retrieveByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var records []accessRecordRow

	if err := r.db.SelectContext(ctx, &records, r.db.Rebind(query), row.ID); err != nil {
		return nil, fmt.Errorf("%s: failed to select from access_records table: %w", op, err)
	}

	link := row.toEntity()
	link.AccessRecords = make([]entity.AccessRecord, 0, len(records))
	for _, rec := range records {
		link.AccessRecords = append(link.AccessRecords, *rec.toEntity())
	}

	return link, nil
}

func (r *LinkRepository) retrieveByCode(ctx context.Context, code string) (*linkRow, error) {
	const query = `SELECT id, code, original_url FROM links WHERE code = ?`

	var link linkRow

	if err := r.db.GetContext(ctx, &link, r.db.Rebind(query), code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLinkNotFound
		}

		return nil, fmt.Errorf("failed to get row from links table: %w", err)
	}

	return &link, nil
}

package sqlrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type accessRecordRow struct {
	ID         int64     `db:"id"`
	LinkID     int64     `db:"link_id"`
	AccessedAt time.Time `db:"accessed_at"`
	IPAddress  string    `db:"ip_address"`
	UserAgent  string    `db:"user_agent"`
}

func (r *accessRecordRow) toEntity() *entity.AccessRecord {
	return &entity.AccessRecord{
		ID:         r.ID,
		LinkID:     r.LinkID,
		AccessedAt: r.AccessedAt,
		IPAddress:  r.IPAddress,
		UserAgent:  r.UserAgent,
	}
}

// AccessRecordRepository stores access records in the access_records table.
type AccessRecordRepository struct {
	db *sqlx.DB
}

func NewAccessRecordRepository(db *sqlx.DB) *AccessRecordRepository {
	return &AccessRecordRepository{db: db}
}

func (r *AccessRecordRepository) Save(ctx context.Context, record *entity.AccessRecord) (*entity.AccessRecord, error) {
	const op = "adapter.repository.sqlrepo.AccessRecordRepository.Save"
	const query = `INSERT INTO access_records (link_id, accessed_at, ip_address, user_agent)
		VALUES (?, ?, ?, ?)
		RETURNING id`

	var id int64

	err := r.db.GetContext(ctx, &id, r.db.Rebind(query),
		record.LinkID, record.AccessedAt, record.IPAddress, record.UserAgent)
	if err != nil {
		if isForeignKeyViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to insert into access_records table: %w", op, err)
	}

	rec := *record
	rec.ID = id

	return &rec, nil
}

// Package memory provides an in-process store for links and access records.
// It enforces the same uniqueness and cascade rules as the SQL schema and is
// safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

// Repository keeps links by code and access records by link ID.
type Repository struct {
	mu           sync.RWMutex
	nextLinkID   int64
	nextRecordID int64
	links        map[string]*entity.Link
	codes        map[int64]string
	records      map[int64][]entity.AccessRecord
}

// NewRepository returns an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		links:   make(map[string]*entity.Link),
		codes:   make(map[int64]string),
		records: make(map[int64][]entity.AccessRecord),
	}
}

func (r *Repository) Save(_ context.Context, code, originalURL string) (*entity.Link, error) {
	const op = "adapter.repository.memory.Repository.Save"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[code]; ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrCodeExists)
	}

	r.nextLinkID++
	link := &entity.Link{
		ID:          r.nextLinkID,
		Code:        code,
		OriginalURL: originalURL,
	}
	r.links[code] = link
	r.codes[link.ID] = code

	cp := *link
	return &cp, nil
}

func (r *Repository) RetrieveByCode(_ context.Context, code string) (*entity.Link, error) {
	const op = "adapter.repository.memory.Repository.RetrieveByCode"

	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.links[code]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	cp := *link
	return &cp, nil
}

func (r *Repository) RetrieveAll(_ context.Context) ([]entity.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := make([]entity.Link, 0, len(r.links))
	for _, link := range r.links {
		links = append(links, *link)
	}

	sort.Slice(links, func(i, j int) bool {
		return links[i].ID < links[j].ID
	})

	return links, nil
}

func (r *Repository) RemoveByCode(_ context.Context, code string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.links[code]
	if !ok {
		return 0, nil
	}

	delete(r.links, code)
	delete(r.codes, link.ID)
	delete(r.records, link.ID)

	return 1, nil
}

func (r *Repository) RetrieveByCodeWithAccessRecords(_ context.Context, code string) (*entity.Link, error) {
	const op = "adapter.repository.memory.Repository.RetrieveByCodeWithAccessRecords"

	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.links[code]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	cp := *link
	cp.AccessRecords = make([]entity.AccessRecord, len(r.records[link.ID]))
	copy(cp.AccessRecords, r.records[link.ID])

	return &cp, nil
}

// SaveAccessRecord stores record for an existing link. A record for a link that
// is gone is rejected, mirroring the foreign key in the SQL schema.
func (r *Repository) SaveAccessRecord(_ context.Context, record *entity.AccessRecord) (*entity.AccessRecord, error) {
	const op = "adapter.repository.memory.Repository.SaveAccessRecord"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.codes[record.LinkID]; !ok {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	r.nextRecordID++
	rec := *record
	rec.ID = r.nextRecordID
	r.records[rec.LinkID] = append(r.records[rec.LinkID], rec)

	return &rec, nil
}

// AccessRecords adapts the repository to the access record store interface.
func (r *Repository) AccessRecords() *AccessRecordRepository {
	return &AccessRecordRepository{repo: r}
}

// AccessRecordRepository saves access records into the Repository it was
// obtained from.
type AccessRecordRepository struct {
	repo *Repository
}

func (r *AccessRecordRepository) Save(ctx context.Context, record *entity.AccessRecord) (*entity.AccessRecord, error) {
	return r.repo.SaveAccessRecord(ctx, record)
}

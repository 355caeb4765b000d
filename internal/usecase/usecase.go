// Package usecase implements the link service: shortening, resolution through
// a read-through cache, deletion with cache invalidation, and access records.
//
// The service takes no locks. Concurrent creations that draw the same code are
// resolved by the link store's unique constraint and a bounded retry. A
// resolution that misses the cache just before a concurrent DeleteLink may put
// the deleted URL back into the cache; that entry is served until its TTL runs
// out, because cache hits are never re-checked against the store.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

const (
	// DefaultCacheTTL is how long a resolved URL stays cached.
	DefaultCacheTTL = time.Hour
	// DefaultMaxAttempts bounds code generation retries on collisions.
	DefaultMaxAttempts = 3
)

// LinkRepository is the durable store of links.
type LinkRepository interface {
	// Save stores a new link. Returns entity.ErrCodeExists if the code is taken.
	Save(ctx context.Context, code, originalURL string) (*entity.Link, error)
	// RetrieveByCode returns the link or entity.ErrLinkNotFound.
	RetrieveByCode(ctx context.Context, code string) (*entity.Link, error)
	RetrieveAll(ctx context.Context) ([]entity.Link, error)
	// RemoveByCode deletes the link and its access records, returning the number of links removed.
	RemoveByCode(ctx context.Context, code string) (int64, error)
	// RetrieveByCodeWithAccessRecords returns the link with AccessRecords loaded.
	RetrieveByCodeWithAccessRecords(ctx context.Context, code string) (*entity.Link, error)
}

// AccessRecordRepository persists access records.
type AccessRecordRepository interface {
	Save(ctx context.Context, record *entity.AccessRecord) (*entity.AccessRecord, error)
}

// Cache is a TTL key-value store. Get returns entity.ErrCacheMiss for absent keys.
type Cache interface {
	Get(ctx context.Context, code string) (string, error)
	Set(ctx context.Context, code, originalURL string, ttl time.Duration) error
	Delete(ctx context.Context, code string) error
}

// CodeGenerator issues candidate short codes. Codes are not guaranteed unique.
type CodeGenerator interface {
	Generate() (string, error)
}

type Config struct {
	// Domain prefixes every short URL, e.g. "https://sho.rt".
	Domain      string
	CacheTTL    time.Duration
	MaxAttempts int
}

type LinkUseCase struct {
	domain      string
	cacheTTL    time.Duration
	maxAttempts int
	links       LinkRepository
	records     AccessRecordRepository
	cache       Cache
	codes       CodeGenerator
	logger      *slog.Logger
	now         func() time.Time
}

func NewLinkUseCase(
	cfg Config,
	links LinkRepository,
	records AccessRecordRepository,
	cache Cache,
	codes CodeGenerator,
	logger *slog.Logger,
) *LinkUseCase {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	return &LinkUseCase{
		domain:      strings.TrimSuffix(cfg.Domain, "/"),
		cacheTTL:    cfg.CacheTTL,
		maxAttempts: cfg.MaxAttempts,
		links:       links,
		records:     records,
		cache:       cache,
		codes:       codes,
		logger:      logger,
		now:         time.Now,
	}
}

// NormalizeURL prefixes rawURL with https:// unless it already starts with
// http:// or https://. Nothing else about the URL is checked.
func NormalizeURL(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return rawURL
	}
	return "https://" + rawURL
}

func (uc *LinkUseCase) shortURL(code string) string {
	return uc.domain + "/s/" + code
}

// CreateLink stores the normalized originalURL under a fresh code and returns
// the short URL together with originalURL as supplied. A blank originalURL is
// rejected with entity.ErrValidation.
func (uc *LinkUseCase) CreateLink(ctx context.Context, originalURL string) (*entity.ShortenedLink, error) {
	const op = "usecase.LinkUseCase.CreateLink"
	const msg = "an error occurred while creating the link"

	if strings.TrimSpace(originalURL) == "" {
		return nil, uc.fail(ctx, op, "original url is required", entity.ErrValidation)
	}

	normalized := NormalizeURL(originalURL)

	for i := 0; i < uc.maxAttempts; i++ {
		code, err := uc.codes.Generate()
		if err != nil {
			return nil, uc.fail(ctx, op, msg, err)
		}

		link, err := uc.links.Save(ctx, code, normalized)
		if err != nil {
			if errors.Is(err, entity.ErrCodeExists) {
				uc.logger.Warn("generated code is taken, retrying",
					slog.String("op", op),
					slog.String("code", code),
					slog.Int("attempt", i+1),
				)
				continue
			}

			return nil, uc.fail(ctx, op, msg, err)
		}

		return &entity.ShortenedLink{
			URL:         uc.shortURL(link.Code),
			OriginalURL: originalURL,
		}, nil
	}

	return nil, uc.fail(ctx, op, msg, fmt.Errorf("%w: %d attempts", entity.ErrCodeGenerationExhausted, uc.maxAttempts))
}

// GetOriginalURL resolves code. A cache hit is returned without consulting the
// store; a miss costs one store lookup and populates the cache.
func (uc *LinkUseCase) GetOriginalURL(ctx context.Context, code string) (string, error) {
	const op = "usecase.LinkUseCase.GetOriginalURL"
	const msg = "an error occurred while getting the original url"

	originalURL, err := uc.cache.Get(ctx, code)
	if err == nil {
		return originalURL, nil
	}
	if !errors.Is(err, entity.ErrCacheMiss) {
		uc.logger.Warn("cache lookup failed, falling back to store",
			slog.String("op", op),
			slog.String("code", code),
			slog.Any("err", err),
		)
	}

	link, err := uc.links.RetrieveByCode(ctx, code)
	if err != nil {
		return "", uc.fail(ctx, op, msg, err)
	}

	if err := uc.cache.Set(ctx, code, link.OriginalURL, uc.cacheTTL); err != nil {
		uc.logger.Warn("failed to populate cache",
			slog.String("op", op),
			slog.String("code", code),
			slog.Any("err", err),
		)
	}

	return link.OriginalURL, nil
}

// DeleteLink removes the link from the store and then drops its cache entry.
// The cache entry is dropped even when no link was removed.
func (uc *LinkUseCase) DeleteLink(ctx context.Context, code string) error {
	const op = "usecase.LinkUseCase.DeleteLink"
	const msg = "an error occurred while deleting the link"

	removed, err := uc.links.RemoveByCode(ctx, code)
	if err != nil {
		return uc.fail(ctx, op, msg, err)
	}

	if err := uc.cache.Delete(ctx, code); err != nil {
		return uc.fail(ctx, op, msg, err)
	}

	if removed == 0 {
		return uc.fail(ctx, op, msg, entity.ErrLinkNotFound)
	}

	return nil
}

// SaveStats records one access of the link identified by code.
func (uc *LinkUseCase) SaveStats(ctx context.Context, code, ip, userAgent string) error {
	const op = "usecase.LinkUseCase.SaveStats"
	const msg = "an error occurred while saving stats"

	link, err := uc.links.RetrieveByCode(ctx, code)
	if err != nil {
		return uc.fail(ctx, op, msg, err)
	}

	_, err = uc.records.Save(ctx, &entity.AccessRecord{
		LinkID:     link.ID,
		AccessedAt: uc.now().UTC(),
		IPAddress:  ip,
		UserAgent:  userAgent,
	})
	if err != nil {
		return uc.fail(ctx, op, msg, err)
	}

	return nil
}

// GetStats returns every access record of the link identified by code.
func (uc *LinkUseCase) GetStats(ctx context.Context, code string) ([]entity.AccessRecord, error) {
	const op = "usecase.LinkUseCase.GetStats"
	const msg = "an error occurred while getting stats"

	link, err := uc.links.RetrieveByCodeWithAccessRecords(ctx, code)
	if err != nil {
		return nil, uc.fail(ctx, op, msg, err)
	}

	if link.AccessRecords == nil {
		return []entity.AccessRecord{}, nil
	}

	return link.AccessRecords, nil
}

func (uc *LinkUseCase) FindAll(ctx context.Context) ([]entity.Link, error) {
	const op = "usecase.LinkUseCase.FindAll"
	const msg = "an error occurred while listing links"

	links, err := uc.links.RetrieveAll(ctx)
	if err != nil {
		return nil, uc.fail(ctx, op, msg, err)
	}

	if links == nil {
		return []entity.Link{}, nil
	}

	return links, nil
}

package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vadimbarashkov/shortlink/internal/entity"
)

// fail logs err and maps it onto the service error taxonomy. Every error
// returned by LinkUseCase goes through here.
func (uc *LinkUseCase) fail(ctx context.Context, op, msg string, err error) error {
	kind := entity.ErrBackend

	switch {
	case errors.Is(err, entity.ErrLinkNotFound):
		kind = entity.ErrLinkNotFound
		msg = "link not found"
	case errors.Is(err, entity.ErrCodeGenerationExhausted):
		kind = entity.ErrCodeGenerationExhausted
		msg = "could not allocate a unique code"
	case errors.Is(err, entity.ErrValidation):
		kind = entity.ErrValidation
	}

	level := slog.LevelError
	if kind == entity.ErrLinkNotFound || kind == entity.ErrValidation {
		level = slog.LevelInfo
	}
	uc.logger.Log(ctx, level, msg, slog.String("op", op), slog.Any("err", err))

	return &entity.ServiceError{
		Op:      op,
		Kind:    kind,
		Message: msg,
	}
}

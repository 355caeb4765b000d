package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceError(t *testing.T) {
	errDriver := errors.New("connection refused")

	err := error(&ServiceError{
		Op:      "usecase.LinkUseCase.GetStats",
		Kind:    ErrLinkNotFound,
		Message: "link not found",
	})

	assert.EqualError(t, err, "usecase.LinkUseCase.GetStats: link not found")
	assert.ErrorIs(t, err, ErrLinkNotFound)
	assert.NotErrorIs(t, err, ErrBackend)
	assert.NotErrorIs(t, err, errDriver)

	var se *ServiceError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, "usecase.LinkUseCase.GetStats", se.Op)
}

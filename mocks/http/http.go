// Package http holds testify mocks for the dependencies of the HTTP handlers.
package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type MockLinkUseCase struct {
	mock.Mock
}

func NewMockLinkUseCase(t testingT) *MockLinkUseCase {
	m := &MockLinkUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockLinkUseCase) CreateLink(ctx context.Context, originalURL string) (*entity.ShortenedLink, error) {
	ret := m.Called(ctx, originalURL)

	var link *entity.ShortenedLink
	if v := ret.Get(0); v != nil {
		link = v.(*entity.ShortenedLink)
	}
	return link, ret.Error(1)
}

func (m *MockLinkUseCase) GetOriginalURL(ctx context.Context, code string) (string, error) {
	ret := m.Called(ctx, code)
	return ret.String(0), ret.Error(1)
}

func (m *MockLinkUseCase) DeleteLink(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

func (m *MockLinkUseCase) GetStats(ctx context.Context, code string) ([]entity.AccessRecord, error) {
	ret := m.Called(ctx, code)

	var records []entity.AccessRecord
	if v := ret.Get(0); v != nil {
		records = v.([]entity.AccessRecord)
	}
	return records, ret.Error(1)
}

func (m *MockLinkUseCase) FindAll(ctx context.Context) ([]entity.Link, error) {
	ret := m.Called(ctx)

	var links []entity.Link
	if v := ret.Get(0); v != nil {
		links = v.([]entity.Link)
	}
	return links, ret.Error(1)
}

type MockAccessRecorder struct {
	mock.Mock
}

func NewMockAccessRecorder(t testingT) *MockAccessRecorder {
	m := &MockAccessRecorder{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccessRecorder) Record(ctx context.Context, ev entity.AccessEvent) error {
	return m.Called(ctx, ev).Error(0)
}

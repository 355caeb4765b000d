// Package usecase holds testify mocks for the dependencies of the link service.
package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type MockLinkRepository struct {
	mock.Mock
}

func NewMockLinkRepository(t testingT) *MockLinkRepository {
	m := &MockLinkRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockLinkRepository) Save(ctx context.Context, code, originalURL string) (*entity.Link, error) {
	ret := m.Called(ctx, code, originalURL)

	var link *entity.Link
	if v := ret.Get(0); v != nil {
		link = v.(*entity.Link)
	}
	return link, ret.Error(1)
}

func (m *MockLinkRepository) RetrieveByCode(ctx context.Context, code string) (*entity.Link, error) {
	ret := m.Called(ctx, code)

	var link *entity.Link
	if v := ret.Get(0); v != nil {
		link = v.(*entity.Link)
	}
	return link, ret.Error(1)
}

func (m *MockLinkRepository) RetrieveAll(ctx context.Context) ([]entity.Link, error) {
	ret := m.Called(ctx)

	var links []entity.Link
	if v := ret.Get(0); v != nil {
		links = v.([]entity.Link)
	}
	return links, ret.Error(1)
}

func (m *MockLinkRepository) RemoveByCode(ctx context.Context, code string) (int64, error) {
	ret := m.Called(ctx, code)
	return ret.Get(0).(int64), ret.Error(1)
}

func (m *MockLinkRepository) RetrieveByCodeWithAccessRecords(ctx context.Context, code string) (*entity.Link, error) {
	ret := m.Called(ctx, code)

	var link *entity.Link
	if v := ret.Get(0); v != nil {
		link = v.(*entity.Link)
	}
	return link, ret.Error(1)
}

type MockAccessRecordRepository struct {
	mock.Mock
}

func NewMockAccessRecordRepository(t testingT) *MockAccessRecordRepository {
	m := &MockAccessRecordRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccessRecordRepository) Save(ctx context.Context, record *entity.AccessRecord) (*entity.AccessRecord, error) {
	ret := m.Called(ctx, record)

	var rec *entity.AccessRecord
	if v := ret.Get(0); v != nil {
		rec = v.(*entity.AccessRecord)
	}
	return rec, ret.Error(1)
}

type MockCache struct {
	mock.Mock
}

func NewMockCache(t testingT) *MockCache {
	m := &MockCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCache) Get(ctx context.Context, code string) (string, error) {
	ret := m.Called(ctx, code)
	return ret.String(0), ret.Error(1)
}

func (m *MockCache) Set(ctx context.Context, code, originalURL string, ttl time.Duration) error {
	return m.Called(ctx, code, originalURL, ttl).Error(0)
}

func (m *MockCache) Delete(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

type MockCodeGenerator struct {
	mock.Mock
}

func NewMockCodeGenerator(t testingT) *MockCodeGenerator {
	m := &MockCodeGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCodeGenerator) Generate() (string, error) {
	ret := m.Called()
	return ret.String(0), ret.Error(1)
}

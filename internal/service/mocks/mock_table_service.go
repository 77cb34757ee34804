package mocks

import (
	"context"

	"sharetome/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockTableService struct {
	mock.Mock
}

func (m *MockTableService) ListUserTables(ctx context.Context, sess *model.Session) ([]model.Table, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Table), args.Error(1)
}

func (m *MockTableService) GetTable(ctx context.Context, sess *model.Session, tableID string) (*model.Table, error) {
	args := m.Called(ctx, sess, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Table), args.Error(1)
}

func (m *MockTableService) CreateTable(ctx context.Context, sess *model.Session, in model.CreateTableInput) (*model.CreateTableResult, error) {
	args := m.Called(ctx, sess, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreateTableResult), args.Error(1)
}

func (m *MockTableService) ListDocuments(ctx context.Context, sess *model.Session, tableID string) ([]model.Document, error) {
	args := m.Called(ctx, sess, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockTableService) SearchDocuments(ctx context.Context, sess *model.Session, query, tableID string) ([]model.Document, error) {
	args := m.Called(ctx, sess, query, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockTableService) UpdateVisibility(ctx context.Context, sess *model.Session, tableID string, isPublic bool) error {
	args := m.Called(ctx, sess, tableID, isPublic)
	return args.Error(0)
}

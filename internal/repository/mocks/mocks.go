package mocks

import (
	"context"

	"marginbook/internal/domain/document"

	"github.com/stretchr/testify/mock"
)

// DocumentStore is a mock for repository.DocumentStore.
type DocumentStore struct {
	mock.Mock
}

func (m *DocumentStore) Load(ctx context.Context) (document.Document, error) {
	args := m.Called(ctx)
	if doc, ok := args.Get(0).(document.Document); ok {
		return doc, args.Error(1)
	}
	return document.Document{}, args.Error(1)
}

func (m *DocumentStore) Save(ctx context.Context, doc document.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *DocumentStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

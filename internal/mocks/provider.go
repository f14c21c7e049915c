package mocks

import (
	"context"

	"github.com/overfs/overfs"
	"github.com/stretchr/testify/mock"
)

// MockStorageProvider implements overfs.StorageProvider for testing across packages
type MockStorageProvider struct {
	mock.Mock
}

func (m *MockStorageProvider) OpenFile(ctx context.Context) (*overfs.FilePick, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*overfs.FilePick), args.Error(1)
}

func (m *MockStorageProvider) OpenDirectory(ctx context.Context, recursive bool) ([]overfs.DirEntry, error) {
	args := m.Called(ctx, recursive)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]overfs.DirEntry), args.Error(1)
}

var _ overfs.StorageProvider = (*MockStorageProvider)(nil)

// MockDirHandle implements overfs.DirHandle for testing across packages
type MockDirHandle struct {
	mock.Mock
}

func (m *MockDirHandle) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDirHandle) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDirHandle) CreateSubdirectory(ctx context.Context, name string, createIfAbsent bool) (overfs.DirHandle, error) {
	args := m.Called(ctx, name, createIfAbsent)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(overfs.DirHandle), args.Error(1)
}

var _ overfs.DirHandle = (*MockDirHandle)(nil)

package mocks

import (
	"context"

	"photoapp/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockPhotoService struct {
	mock.Mock
}

func (m *MockPhotoService) Upload(ctx context.Context, file *model.UploadedFile, caption string) (*model.Photo, error) {
	args := m.Called(ctx, file, caption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Photo), args.Error(1)
}

func (m *MockPhotoService) List(ctx context.Context) []model.Photo {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Photo)
}

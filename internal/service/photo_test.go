package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"photoapp/internal/model"
	"photoapp/internal/repository"
	repoMocks "photoapp/internal/repository/mocks"
	"photoapp/internal/storage"
	storeMocks "photoapp/internal/storage/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const fixedUnix = 1700000000

func withFixedClock(t *testing.T) {
	t.Helper()
	orig := now
	now = func() time.Time { return time.Unix(fixedUnix, 0) }
	t.Cleanup(func() { now = orig })
}

func TestDeriveKey(t *testing.T) {
	ts := time.Unix(fixedUnix, 0)

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "space and upper case", filename: "My Photo.png", want: "1700000000-my-photo.png"},
		{name: "underscores", filename: "beach_day_1.JPG", want: "1700000000-beach-day-1.jpg"},
		{name: "slashes", filename: "trip/2024/IMG 01.jpeg", want: "1700000000-trip-2024-img-01.jpeg"},
		{name: "already clean", filename: "cat.gif", want: "1700000000-cat.gif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveKey(ts, tt.filename)
			assert.Equal(t, tt.want, got)

			rest := strings.TrimPrefix(got, "1700000000-")
			assert.NotContains(t, rest, " ")
			assert.NotContains(t, rest, "_")
			assert.NotContains(t, rest, "/")
			assert.Equal(t, strings.ToLower(got), got)
		})
	}
}

func TestCaptionOrDefault(t *testing.T) {
	assert.Equal(t, "sunset", CaptionOrDefault("sunset"))
	assert.Equal(t, DefaultCaption, CaptionOrDefault(""))
	assert.Equal(t, DefaultCaption, CaptionOrDefault("   "))
	assert.Equal(t, "0", CaptionOrDefault("0"))
	assert.Equal(t, "My cool photo!", DefaultCaption)
}

func TestPhotoService_Upload(t *testing.T) {
	ctx := context.Background()
	const key = "1700000000-my-photo.png"
	const url = "http://photos.s3.amazonaws.com/" + key

	tests := []struct {
		name       string
		caption    string
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPhotoRepository) *model.UploadedFile
		wantErr    error
		wantPhoto  *model.Photo
	}{
		{
			name:    "happy path",
			caption: "Sunset over the bay",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPhotoRepository) *model.UploadedFile {
				r := strings.NewReader("png-bytes")
				mStore.On("Put", ctx, key, r, storage.PutObjectOptions{
					Size:        9,
					ContentType: "image/png",
					ACL:         storage.ACLPublicRead,
				}).Return(storage.ObjectInfo{Key: key, Size: 9}, nil).Once()
				mStore.On("PublicURL", key).Return(url)
				mRepo.On("Create", ctx, model.Photo{URL: url, Caption: "Sunset over the bay"}).Return(nil).Once()

				return &model.UploadedFile{OriginalName: "My Photo.png", ContentType: "image/png", Size: 9, Content: r}
			},
			wantPhoto: &model.Photo{URL: url, Caption: "Sunset over the bay"},
		},
		{
			name:    "blank caption uses default",
			caption: "  ",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPhotoRepository) *model.UploadedFile {
				r := strings.NewReader("png-bytes")
				mStore.On("Put", ctx, key, r, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil).Once()
				mStore.On("PublicURL", key).Return(url)
				mRepo.On("Create", ctx, model.Photo{URL: url, Caption: DefaultCaption}).Return(nil).Once()

				return &model.UploadedFile{OriginalName: "My Photo.png", Content: r}
			},
			wantPhoto: &model.Photo{URL: url, Caption: DefaultCaption},
		},
		{
			name: "unknown size is streamed",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPhotoRepository) *model.UploadedFile {
				r := strings.NewReader("png-bytes")
				mStore.On("Put", ctx, key, r, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.Size == -1 && opt.ACL == storage.ACLPublicRead
				})).Return(storage.ObjectInfo{Key: key}, nil).Once()
				mStore.On("PublicURL", key).Return(url)
				mRepo.On("Create", ctx, mock.Anything).Return(nil).Once()

				return &model.UploadedFile{OriginalName: "My Photo.png", Content: r}
			},
			wantPhoto: &model.Photo{URL: url, Caption: DefaultCaption},
		},
		{
			name: "validation error - no file",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPhotoRepository) *model.UploadedFile {
				return nil
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "validation error - transport error",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPhotoRepository) *model.UploadedFile {
				return &model.UploadedFile{OriginalName: "a.png", Err: errors.New("multipart: NextPart: EOF")}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "validation error - nil content",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPhotoRepository) *model.UploadedFile {
				return &model.UploadedFile{OriginalName: "a.png"}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "storage error skips insert",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPhotoRepository) *model.UploadedFile {
				r := strings.NewReader("png")
				mStore.On("Put", ctx, key, r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail")).Once()
				return &model.UploadedFile{OriginalName: "My Photo.png", Content: r}
			},
			wantErr: ErrStoreFailure,
		},
		{
			name: "repository error keeps stored object",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPhotoRepository) *model.UploadedFile {
				r := strings.NewReader("png")
				mStore.On("Put", ctx, key, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil).Once()
				mStore.On("PublicURL", key).Return(url)
				mRepo.On("Create", ctx, mock.Anything).Return(errors.New("db fail")).Once()
				return &model.UploadedFile{OriginalName: "My Photo.png", Content: r}
			},
			wantErr: ErrPersistenceFailure,
		},
		{
			name: "zero rows affected",
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockPhotoRepository) *model.UploadedFile {
				r := strings.NewReader("png")
				mStore.On("Put", ctx, key, r, mock.Anything).Return(storage.ObjectInfo{Key: key}, nil).Once()
				mStore.On("PublicURL", key).Return(url)
				mRepo.On("Create", ctx, mock.Anything).Return(repository.ErrNoRowsAffected).Once()
				return &model.UploadedFile{OriginalName: "My Photo.png", Content: r}
			},
			wantErr: ErrPersistenceFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withFixedClock(t)
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockPhotoRepository)
			svc := NewPhotoService(mStore, mRepo, nil)

			file := tt.setupMocks(mStore, mRepo)

			photo, err := svc.Upload(ctx, file, tt.caption)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, photo)
				assert.Equal(t, model.Alert{Type: model.AlertError, Message: MsgUploadError}, UploadAlert(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantPhoto, photo)
				assert.Contains(t, photo.URL, key)
				assert.Equal(t, model.AlertSuccess, UploadAlert(err).Type)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
			if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrStoreFailure) {
				mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
			if errors.Is(err, ErrInvalidInput) {
				mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPhotoService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mRepo *repoMocks.MockPhotoRepository)
		want       []model.Photo
	}{
		{
			name: "happy path",
			setupMocks: func(mRepo *repoMocks.MockPhotoRepository) {
				mRepo.On("List", ctx).Return([]model.Photo{{URL: "u1", Caption: "c1"}, {URL: "u2", Caption: "c2"}}, nil)
			},
			want: []model.Photo{{URL: "u1", Caption: "c1"}, {URL: "u2", Caption: "c2"}},
		},
		{
			name: "query failure degrades to empty list",
			setupMocks: func(mRepo *repoMocks.MockPhotoRepository) {
				mRepo.On("List", ctx).Return(nil, errors.New("relation does not exist"))
			},
			want: []model.Photo{},
		},
		{
			name: "nil result normalized",
			setupMocks: func(mRepo *repoMocks.MockPhotoRepository) {
				mRepo.On("List", ctx).Return(nil, nil)
			},
			want: []model.Photo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockPhotoRepository)
			svc := NewPhotoService(nil, mRepo, nil)

			tt.setupMocks(mRepo)

			got := svc.List(ctx)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestFailureKind(t *testing.T) {
	assert.Equal(t, "success", FailureKind(nil))
	assert.Equal(t, "invalid_input", FailureKind(ErrInvalidInput))
	assert.Equal(t, "store_failure", FailureKind(errors.Join(errors.New("x"), ErrStoreFailure)))
	assert.Equal(t, "persistence_failure", FailureKind(ErrPersistenceFailure))
	assert.Equal(t, "error", FailureKind(errors.New("other")))
}

func TestWithMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	inner := new(serviceStub)
	svc, err := WithMetrics(inner, reg)
	require.NoError(t, err)

	inner.err = nil
	_, _ = svc.Upload(ctx, nil, "")
	inner.err = ErrStoreFailure
	_, _ = svc.Upload(ctx, nil, "")
	_, _ = svc.Upload(ctx, nil, "")

	uploads := svc.(*instrumentedPhotoService).uploads
	assert.Equal(t, float64(1), testutil.ToFloat64(uploads.WithLabelValues("success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(uploads.WithLabelValues("store_failure")))

	_, err = WithMetrics(inner, reg)
	assert.Error(t, err, "registering twice on one registry fails")
}

type serviceStub struct {
	err error
}

func (s *serviceStub) Upload(ctx context.Context, file *model.UploadedFile, caption string) (*model.Photo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Photo{}, nil
}

func (s *serviceStub) List(ctx context.Context) []model.Photo { return nil }

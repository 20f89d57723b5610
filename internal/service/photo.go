package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"photoapp/internal/logging"
	"photoapp/internal/model"
	"photoapp/internal/repository"
	"photoapp/internal/storage"
)

var (
	ErrInvalidInput       = errors.New("uploaded photo file is not valid")
	ErrStoreFailure       = errors.New("uploading photo to object store failed")
	ErrPersistenceFailure = errors.New("saving photo to database failed")
)

const (
	DefaultCaption = "My cool photo!"

	MsgUploadSuccess = "Yay! You uploaded a new photo."
	MsgUploadError   = "Sorry, there was a problem uploading your photo."
)

var now = time.Now

var keyReplacer = strings.NewReplacer(" ", "-", "_", "-", "/", "-")

// PhotoService defines the use cases for sharing photos.
type PhotoService interface {
	// Upload stores the file in object storage, then records its public URL and caption.
	// The stored object is left in place when the insert fails.
	Upload(ctx context.Context, file *model.UploadedFile, caption string) (*model.Photo, error)

	// List returns every recorded photo. Query failures yield an empty list.
	List(ctx context.Context) []model.Photo
}

// photoService is a concrete implementation of PhotoService.
type photoService struct {
	store  storage.Storage
	repo   repository.PhotoRepository
	logger *slog.Logger
}

// NewPhotoService constructs a new PhotoService.
func NewPhotoService(store storage.Storage, repo repository.PhotoRepository, logger *slog.Logger) PhotoService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &photoService{store: store, repo: repo, logger: logger}
}

// DeriveKey builds the object key "{unix seconds}-{name}" where name is lower-cased
// and spaces, underscores and slashes become hyphens.
func DeriveKey(ts time.Time, originalName string) string {
	return strconv.FormatInt(ts.Unix(), 10) + "-" + strings.ToLower(keyReplacer.Replace(originalName))
}

// CaptionOrDefault returns caption, or DefaultCaption when it is blank.
func CaptionOrDefault(caption string) string {
	if strings.TrimSpace(caption) == "" {
		return DefaultCaption
	}
	return caption
}

func (s *photoService) Upload(ctx context.Context, file *model.UploadedFile, caption string) (*model.Photo, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: no file submitted", ErrInvalidInput)
	}
	if file.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, file.Err)
	}
	if file.Content == nil {
		return nil, fmt.Errorf("%w: empty content stream", ErrInvalidInput)
	}

	key := DeriveKey(now(), file.OriginalName)

	size := file.Size
	if size <= 0 {
		size = -1
	}
	if _, err := s.store.Put(ctx, key, file.Content, storage.PutObjectOptions{
		Size:        size,
		ContentType: file.ContentType,
		ACL:         storage.ACLPublicRead,
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	photo := model.Photo{
		URL:     s.store.PublicURL(key),
		Caption: CaptionOrDefault(caption),
	}
	if err := s.repo.Create(ctx, photo); err != nil {
		return nil, fmt.Errorf("%w: key %s: %w", ErrPersistenceFailure, key, err)
	}
	return &photo, nil
}

func (s *photoService) List(ctx context.Context) []model.Photo {
	items, err := s.repo.List(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "photo_list_failed", "error", err.Error())
		return []model.Photo{}
	}
	if items == nil {
		return []model.Photo{}
	}
	return items
}

// UploadAlert collapses an Upload result into the alert shown to the user.
// Failure details are never part of the message.
func UploadAlert(err error) model.Alert {
	if err != nil {
		return model.Alert{Type: model.AlertError, Message: MsgUploadError}
	}
	return model.Alert{Type: model.AlertSuccess, Message: MsgUploadSuccess}
}

// FailureKind names the error class of an Upload failure, for logs and metrics.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrStoreFailure):
		return "store_failure"
	case errors.Is(err, ErrPersistenceFailure):
		return "persistence_failure"
	default:
		return "error"
	}
}

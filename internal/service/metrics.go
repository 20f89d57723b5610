package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"photoapp/internal/model"
)

type instrumentedPhotoService struct {
	next    PhotoService
	uploads *prometheus.CounterVec
}

// WithMetrics wraps next so every Upload increments photo_uploads_total{result}.
func WithMetrics(next PhotoService, reg prometheus.Registerer) (PhotoService, error) {
	uploads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photo_uploads_total",
			Help: "Photo upload attempts by result.",
		},
		[]string{"result"},
	)
	if err := reg.Register(uploads); err != nil {
		return nil, err
	}
	return &instrumentedPhotoService{next: next, uploads: uploads}, nil
}

func (s *instrumentedPhotoService) Upload(ctx context.Context, file *model.UploadedFile, caption string) (*model.Photo, error) {
	photo, err := s.next.Upload(ctx, file, caption)
	s.uploads.WithLabelValues(FailureKind(err)).Inc()
	return photo, err
}

func (s *instrumentedPhotoService) List(ctx context.Context) []model.Photo {
	return s.next.List(ctx)
}

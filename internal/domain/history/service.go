// Package history records completed analyses per device and serves them back
// over the API.
package history

import (
	"context"
	"time"

	"aidpal-server-go/internal/domain/eventbus"
	"aidpal-server-go/internal/platform/logging"
	"aidpal-server-go/internal/platform/storage"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"
)

// Service wraps the history repository and listens for completed analyses on
// the event bus.
type Service struct {
	repo   *storage.HistoryRepository
	logger *logging.Logger
	limit  int
}

// NewService builds the history service. limit caps List responses.
func NewService(repo *storage.HistoryRepository, logger *logging.Logger, limit int) *Service {
	if limit <= 0 {
		limit = 50
	}
	return &Service{
		repo:   repo,
		logger: logger,
		limit:  limit,
	}
}

// SubscribeEvents wires the service to the shared async bus so every
// completed analysis is persisted without blocking the request path.
func (s *Service) SubscribeEvents() error {
	return eventbus.SubscribeAsync(eventbus.EventAnalysisCompleted, s.onAnalysisCompleted)
}

func (s *Service) onAnalysisCompleted(data eventbus.AnalysisCompletedData) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Record(ctx, data.DeviceID, data.Image, data.Result); err != nil {
		s.logger.WarnTag("storage", "persist analysis history: %v", err)
	}
}

// Record appends one completed analysis for a device.
func (s *Service) Record(ctx context.Context, deviceID, image string, result any) error {
	payload, err := sonic.Marshal(result)
	if err != nil {
		return err
	}
	return s.repo.Append(ctx, &storage.HistoryRecord{
		DeviceID: deviceID,
		Image:    image,
		Result:   datatypes.JSON(payload),
	})
}

// List returns the most recent records for a device.
func (s *Service) List(ctx context.Context, deviceID string) ([]storage.HistoryRecord, error) {
	return s.repo.List(ctx, deviceID, s.limit)
}

// Get fetches one record by identifier.
func (s *Service) Get(ctx context.Context, id string) (*storage.HistoryRecord, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes one record by identifier.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Count reports how many records exist in total.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

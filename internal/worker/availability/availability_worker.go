package availability

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/library-availability/internal/domain"
	"github.com/library-availability/internal/domain/repository"
	"github.com/library-availability/internal/worker"
)

// BookFinder - поиск книги в ближайших библиотеках (реализуется usecase.AvailabilityUseCase)
type BookFinder interface {
	FindBookAtLibraries(ctx context.Context, isbn string, center domain.Coordinate, radiusKm float64) ([]domain.BranchAvailability, error)
}

// AvailabilityWorker обрабатывает запросы на проверку наличия книги из Redis Stream
type AvailabilityWorker struct {
	*worker.BaseWorker
	streamRepo  repository.StreamRepository
	finder      BookFinder
	concurrency int
}

// NewAvailabilityWorker создает новый AvailabilityWorker
func NewAvailabilityWorker(
	streamRepo repository.StreamRepository,
	finder BookFinder,
	consumerGroup string,
	concurrency int,
	logger *zap.Logger,
) *AvailabilityWorker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &AvailabilityWorker{
		BaseWorker:  worker.NewBaseWorker("library-availability", consumerGroup, logger),
		streamRepo:  streamRepo,
		finder:      finder,
		concurrency: concurrency,
	}
}

// Start читает стрим запросов до Stop или отмены ctx.
// Одновременно обрабатывается не больше concurrency запросов.
func (w *AvailabilityWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting AvailabilityWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("concurrency", w.concurrency))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamAvailabilityRequest, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	// Остановка воркера отменяет чтение стрима; уже начатые проверки дорабатывают
	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.StopChan():
			cancel()
		case <-consumeCtx.Done():
		}
	}()

	messages, err := w.streamRepo.ConsumeStream(consumeCtx, domain.StreamAvailabilityRequest, w.ConsumerGroup(), w.ConsumerName())
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	var g errgroup.Group
	g.SetLimit(w.concurrency)

	for msg := range messages {
		g.Go(func() error {
			w.handleMessage(ctx, msg)
			return nil
		})
	}

	_ = g.Wait()

	if ctx.Err() != nil {
		logger.Info("Context cancelled")
		return ctx.Err()
	}
	logger.Info("Worker stopped")
	return nil
}

// handleMessage обрабатывает одно сообщение.
// Битые сообщения подтверждаются и отбрасываются; сообщение без опубликованного
// результата не подтверждается и будет доставлено повторно.
func (w *AvailabilityWorker) handleMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	var event domain.AvailabilityRequestEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		logger.Warn("Failed to parse message, skipping", zap.Error(err))
		w.ack(ctx, msg.ID)
		return
	}

	logger = logger.With(zap.String("request_id", event.RequestID.String()))

	done := domain.AvailabilityDoneEvent{
		RequestID: event.RequestID,
		ISBN:      domain.NormalizeISBN(event.ISBN),
		Libraries: []domain.BranchAvailability{},
	}

	switch {
	case !event.HasISBN():
		done.Error = "isbn is required"
	case !event.Center().Valid():
		done.Error = "invalid coordinates"
	case event.MaxDistance < 0:
		done.Error = "invalid max_distance"
	default:
		libraries, err := w.finder.FindBookAtLibraries(ctx, done.ISBN, event.Center(), event.MaxDistance)
		if err != nil {
			logger.Error("Availability lookup failed", zap.Error(err))
			done.Error = err.Error()
		} else {
			done.Libraries = libraries
		}
	}

	if done.Error != "" {
		logger.Warn("Availability request rejected", zap.String("reason", done.Error))
	}

	if err := w.streamRepo.PublishToStream(ctx, domain.StreamAvailabilityDone, done); err != nil {
		logger.Error("Failed to publish done event", zap.Error(err))
		return
	}

	w.ack(ctx, msg.ID)

	logger.Info("Availability request processed",
		zap.String("isbn", done.ISBN),
		zap.Int("libraries", len(done.Libraries)))
}

func (w *AvailabilityWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamAvailabilityRequest, w.ConsumerGroup(), messageID); err != nil {
		w.Logger().Error("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}

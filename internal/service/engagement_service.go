package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/edushare-my/edushare-api/pkg/jobs"
)

const (
	jobMaterialView     = "material.view"
	jobMaterialDownload = "material.download"
)

type engagementStore interface {
	IncrementViewCount(ctx context.Context, id string) error
	IncrementDownloadCount(ctx context.Context, id string) error
}

// EngagementService records view and download counters off the request path.
// Increments ride an in-memory queue; if the buffer is full the event is
// dropped rather than blocking the read that produced it. Counters are
// engagement signals, not accounting data.
type EngagementService struct {
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
}

// NewEngagementService wires a worker queue over the counter store.
func NewEngagementService(store engagementStore, metrics *MetricsService, logger *zap.Logger, cfg jobs.QueueConfig) *EngagementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Logger = logger
	handler := func(ctx context.Context, job jobs.Job) error {
		id, ok := job.Payload.(string)
		if !ok || id == "" {
			return fmt.Errorf("engagement job %s: missing material id", job.ID)
		}
		switch job.Type {
		case jobMaterialView:
			return store.IncrementViewCount(ctx, id)
		case jobMaterialDownload:
			return store.IncrementDownloadCount(ctx, id)
		default:
			return fmt.Errorf("engagement job %s: unknown type %s", job.ID, job.Type)
		}
	}
	return &EngagementService{
		queue:   jobs.NewQueue("engagement", handler, cfg),
		metrics: metrics,
		logger:  logger,
	}
}

// Start launches the queue workers.
func (s *EngagementService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *EngagementService) Stop() {
	s.queue.Stop()
}

// MaterialViewed enqueues a view increment without blocking.
func (s *EngagementService) MaterialViewed(id string) {
	s.enqueue(jobs.Job{Type: jobMaterialView, Payload: id})
}

// MaterialDownloaded enqueues a download increment without blocking.
func (s *EngagementService) MaterialDownloaded(id string) {
	s.enqueue(jobs.Job{Type: jobMaterialDownload, Payload: id})
}

func (s *EngagementService) enqueue(job jobs.Job) {
	if !s.queue.TryEnqueue(job) {
		s.metrics.RecordEngagementDrop()
	}
}

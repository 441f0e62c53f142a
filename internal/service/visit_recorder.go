package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
	"github.com/noah-isme/accompaniment-planner-api/pkg/jobs"
)

const jobTypeRecordVisits = "record_confirmed_visits"

type visitWriter interface {
	InsertBatch(ctx context.Context, visits []models.AccompanimentVisit) error
}

type jobQueue interface {
	Enqueue(job jobs.Job) error
}

// VisitRecorder persists confirmed visits in the background so a slow
// database never holds up the confirmation response.
type VisitRecorder struct {
	repo   visitWriter
	queue  jobQueue
	logger *zap.Logger
}

// NewVisitRecorder builds a recorder. Without a queue, visits are written inline.
func NewVisitRecorder(repo visitWriter, queue jobQueue, logger *zap.Logger) *VisitRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisitRecorder{repo: repo, queue: queue, logger: logger}
}

// Record schedules visits for persistence.
func (r *VisitRecorder) Record(ctx context.Context, visits []models.AccompanimentVisit) error {
	if len(visits) == 0 {
		return nil
	}
	if r.queue == nil {
		return r.repo.InsertBatch(ctx, visits)
	}
	return r.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobTypeRecordVisits, Payload: visits})
}

// Handle is the queue handler that performs the write.
func (r *VisitRecorder) Handle(ctx context.Context, job jobs.Job) error {
	visits, ok := job.Payload.([]models.AccompanimentVisit)
	if !ok {
		r.logger.Error("unexpected visit job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	if err := r.repo.InsertBatch(ctx, visits); err != nil {
		return fmt.Errorf("record %d confirmed visits: %w", len(visits), err)
	}
	r.logger.Info("confirmed visits recorded", zap.String("job_id", job.ID), zap.Int("count", len(visits)))
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/accompaniment-planner-api/internal/dto"
	"github.com/noah-isme/accompaniment-planner-api/internal/models"
	"github.com/noah-isme/accompaniment-planner-api/internal/planner"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type availabilityRepository interface {
	ListBySpecialist(ctx context.Context, specialistID string) ([]models.AvailabilityBlock, error)
	FindByID(ctx context.Context, specialistID, id string) (*models.AvailabilityBlock, error)
	ApplyMerge(ctx context.Context, exec sqlx.ExtContext, specialistID string, removeIDs []string, merged *models.AvailabilityBlock) error
	Delete(ctx context.Context, specialistID, id string) error
}

type sessionRefresher interface {
	RefreshAvailability(ctx context.Context, specialistID string) error
}

// AvailabilityService edits declared availability, merging every saved block
// with the blocks it overlaps or touches on the same day.
type AvailabilityService struct {
	repo      availabilityRepository
	tx        txProvider
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	sessions  sessionRefresher
	newID     func() string
}

// NewAvailabilityService constructs the availability editor. sessions, when
// set, is told about every change so loaded planning sessions see it.
func NewAvailabilityService(repo availabilityRepository, tx txProvider, sessions sessionRefresher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AvailabilityService{repo: repo, tx: tx, sessions: sessions, metrics: metrics, validator: validate, logger: logger, newID: uuid.NewString}
}

// List returns the specialist's blocks ordered by day and start.
func (s *AvailabilityService) List(ctx context.Context, specialistID string) ([]dto.AvailabilityBlockResponse, error) {
	blocks, err := s.load(ctx, specialistID)
	if err != nil {
		return nil, err
	}
	return blockResponses(blocks), nil
}

// Create saves a new block, absorbing neighbours it overlaps or touches.
func (s *AvailabilityService) Create(ctx context.Context, specialistID string, req dto.AvailabilityBlockRequest) (*dto.AvailabilityMutationResponse, error) {
	return s.save(ctx, specialistID, "", req)
}

// Update replaces block id and re-runs the merge against the remaining blocks.
func (s *AvailabilityService) Update(ctx context.Context, specialistID, id string, req dto.AvailabilityBlockRequest) (*dto.AvailabilityMutationResponse, error) {
	if _, err := s.repo.FindByID(ctx, specialistID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "availability block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability block")
	}
	return s.save(ctx, specialistID, id, req)
}

// Delete removes block id.
func (s *AvailabilityService) Delete(ctx context.Context, specialistID, id string) error {
	if err := s.repo.Delete(ctx, specialistID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "availability block not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete availability block")
	}
	s.logger.Info("availability block deleted", zap.String("specialist_id", specialistID), zap.String("block_id", id))
	s.refreshSession(ctx, specialistID)
	return nil
}

// refreshSession pushes the stored blocks into a loaded planning session.
// The write already committed, so a failure here is only logged.
func (s *AvailabilityService) refreshSession(ctx context.Context, specialistID string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RefreshAvailability(ctx, specialistID); err != nil {
		s.logger.Warn("failed to refresh planning session availability", zap.String("specialist_id", specialistID), zap.Error(err))
	}
}

func (s *AvailabilityService) load(ctx context.Context, specialistID string) ([]planner.Block, error) {
	rows, err := s.repo.ListBySpecialist(ctx, specialistID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	blocks, skipped := ingestBlocks(rows, s.logger)
	s.metrics.RecordIngestSkipped("availability_block", skipped)
	return blocks, nil
}

func (s *AvailabilityService) save(ctx context.Context, specialistID, editingID string, req dto.AvailabilityBlockRequest) (*dto.AvailabilityMutationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	candidate, err := blockFromModel(models.AvailabilityBlock{
		DayOfWeek:     req.DayOfWeek,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		InPersonHours: req.InPersonHours,
		RemoteHours:   req.RemoteHours,
	})
	if err != nil {
		return nil, err
	}

	existing, err := s.load(ctx, specialistID)
	if err != nil {
		return nil, err
	}
	result, err := planner.MergeBlock(existing, candidate, editingID, s.newID)
	if err != nil {
		return nil, err
	}

	removeIDs := append([]string(nil), result.Absorbed...)
	if editingID != "" {
		removeIDs = append(removeIDs, editingID)
	}
	if err := s.persist(ctx, specialistID, removeIDs, result.Merged); err != nil {
		return nil, err
	}
	s.metrics.RecordMerge(len(result.Absorbed))
	s.refreshSession(ctx, specialistID)
	s.logger.Info("availability block saved",
		zap.String("specialist_id", specialistID),
		zap.String("block_id", result.Merged.ID),
		zap.String("interval", result.Merged.Interval.String()),
		zap.Strings("absorbed", result.Absorbed),
	)

	day := result.Merged.Interval.Day()
	sameDay := make([]planner.Block, 0, len(result.Blocks))
	for _, b := range result.Blocks {
		if b.Interval.Day() == day {
			sameDay = append(sameDay, b)
		}
	}
	absorbed := result.Absorbed
	if absorbed == nil {
		absorbed = []string{}
	}
	return &dto.AvailabilityMutationResponse{
		Block:    blockResponse(result.Merged),
		Absorbed: absorbed,
		Blocks:   blockResponses(sameDay),
	}, nil
}

func (s *AvailabilityService) persist(ctx context.Context, specialistID string, removeIDs []string, merged planner.Block) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.repo.ApplyMerge(ctx, tx, specialistID, removeIDs, blockToModel(specialistID, merged)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save availability block")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit availability block")
	}
	return nil
}

func blockResponse(b planner.Block) dto.AvailabilityBlockResponse {
	return dto.AvailabilityBlockResponse{
		ID:              b.ID,
		DayOfWeek:       int(b.Interval.Day()),
		DayName:         b.Interval.Day().String(),
		StartTime:       planner.FormatClock(b.Interval.Start()),
		EndTime:         planner.FormatClock(b.Interval.End()),
		DurationMinutes: b.Interval.Duration(),
		InPersonHours:   b.InPersonHours,
		RemoteHours:     b.RemoteHours,
	}
}

func blockResponses(blocks []planner.Block) []dto.AvailabilityBlockResponse {
	out := make([]dto.AvailabilityBlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockResponse(b))
	}
	return out
}

package service

import (
	"context"

	"camphub-be/internal/repository"

	"go.uber.org/zap"
)

// DBActivityRecorder appends activity rows through the repository. Failures
// are logged and swallowed so the audit trail can never block an operation.
type DBActivityRecorder struct {
	repo   repository.ActivityRepository
	logger *zap.Logger
}

func NewDBActivityRecorder(repo repository.ActivityRepository, logger *zap.Logger) *DBActivityRecorder {
	return &DBActivityRecorder{repo: repo, logger: logger}
}

func (r *DBActivityRecorder) Record(ctx context.Context, entityType, entityID, actorID, activityType string, details map[string]any) {
	if err := r.repo.Insert(ctx, entityType, entityID, actorID, activityType, details); err != nil {
		r.logger.Warn("failed to record activity",
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.String("activity_type", activityType),
			zap.Error(err))
	}
}

package memory

import (
	"context"

	"github.com/baechuer/iset-library/internal/application/auth"
	"github.com/baechuer/iset-library/internal/logger"
)

// NoopPublisher logs events instead of sending them. Used in dev when no
// broker is reachable.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishStudentRegistered(ctx context.Context, evt auth.StudentRegisteredEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("user_id", evt.UserID).
		Str("username", evt.Username).
		Msg("noop-pub: student registered")
	return nil
}

func (p *NoopPublisher) PublishStudentDeleted(ctx context.Context, evt auth.StudentDeletedEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("user_id", evt.UserID).
		Str("deleted_by", evt.DeletedBy).
		Msg("noop-pub: student deleted")
	return nil
}

package service

import (
	"context"

	"go.uber.org/zap"
)

// effect is one post-commit side effect (notification, activity row).
type effect struct {
	name string
	run  func(ctx context.Context) error
}

// runEffects drains the effect list after the authoritative state change has
// committed. A failing effect is downgraded to a warning; it can never
// unwind the commit that queued it.
func runEffects(ctx context.Context, logger *zap.Logger, effects []effect) {
	for _, e := range effects {
		if err := e.run(ctx); err != nil {
			logger.Warn("post-commit effect failed",
				zap.String("effect", e.name),
				zap.Error(err))
		}
	}
}

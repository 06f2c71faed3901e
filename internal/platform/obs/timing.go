package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Time starts a span named op. Call the returned func with a pointer to the
// operation's error to log its duration and outcome.
func Time(ctx context.Context, op string) func(errp *error) {
	start := time.Now()
	log := FromContext(ctx)

	return func(errp *error) {
		fields := []zap.Field{
			zap.String("op", op),
			zap.Int64("dur_ms", time.Since(start).Milliseconds()),
		}

		if errp != nil && *errp != nil {
			log.Warn("op failed", append(fields, zap.Error(*errp))...)
			return
		}
		log.Debug("op done", fields...)
	}
}

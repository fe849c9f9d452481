package observability

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/zap"

	"github.com/kjstillabower/temperature-average-service/internal/health"
)

// FlushTelemetry logs a final traffic summary and syncs the logger. Metrics are
// pull-based and need no flush. Call after in-flight requests have drained.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c := health.Default.Counts(rateLimitWindow.Load())
	logger.Info("final traffic summary",
		zap.Duration("window", rateLimitWindow.Load()),
		zap.Int("success", c.Success),
		zap.Int("errors", c.Errors),
		zap.Int("denied", c.Denied))
	if err := logger.Sync(); err != nil && !isUnsyncable(err) {
		return fmt.Errorf("flush logs: %w", err)
	}
	return nil
}

// isUnsyncable reports the errors fsync returns for terminals and pipes, which
// zap surfaces when logging to stdout/stderr.
func isUnsyncable(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY)
}

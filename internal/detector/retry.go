package detector

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"go.uber.org/zap"
)

// Retrying retries a flaky detector with a constant backoff. Context
// cancellation and deadline errors are never retried.
type Retrying struct {
	next     contract.Detector
	retries  int
	interval time.Duration
	logger   *zap.Logger
}

var _ contract.Detector = &Retrying{} // Compile-time check

// NewRetrying wraps next with up to retries extra attempts.
func NewRetrying(next contract.Detector, retries int, interval time.Duration, logger *zap.Logger) *Retrying {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{next: next, retries: retries, interval: interval, logger: logger}
}

// Name implements the Detector interface.
func (r *Retrying) Name() string {
	return r.next.Name()
}

// Detect implements the Detector interface.
func (r *Retrying) Detect(ctx context.Context, imagePath string) ([]schema.Detection, error) {
	var dets []schema.Detection
	operation := func() error {
		var err error
		dets, err = r.next.Detect(ctx, imagePath)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Debug("retrying detector",
			zap.String("image", imagePath),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	err := backoff.RetryNotify(
		operation,
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(r.interval), uint64(r.retries)),
			ctx,
		),
		notify,
	)
	if err != nil {
		return nil, err
	}
	return dets, nil
}

//go:build !kafka

package publish

import (
	"errors"

	"go.uber.org/zap"
)

// ErrKafkaUnavailable is returned when brokers are configured but the binary
// was built without the kafka tag.
var ErrKafkaUnavailable = errors.New("kafka publishing requires building with -tags kafka")

// KafkaPublisher is unavailable in this build.
type KafkaPublisher struct{ Nop }

// NewKafkaPublisher always fails in this build.
func NewKafkaPublisher(_, _ string, _ *zap.Logger) (*KafkaPublisher, error) {
	return nil, ErrKafkaUnavailable
}

// Package publish ships finished surveys to a downstream sink.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"go.uber.org/zap"
)

// Message is the payload written to the sink. Image level records stay in
// the tracking store; consumers get the roll-up.
type Message struct {
	RunID       string               `json:"run_id"`
	AreaName    string               `json:"area_name"`
	PublishedAt time.Time            `json:"published_at"`
	Summary     schema.SurveySummary `json:"summary"`
	Report      *schema.AreaReport   `json:"area_report"`
}

// Encode builds the message key, value and headers for one survey.
func Encode(result *schema.SurveyResult, now time.Time) ([]byte, []byte, map[string]string, error) {
	if result == nil {
		return nil, nil, nil, fmt.Errorf("nothing to publish")
	}
	msg := Message{
		RunID:       result.RunID,
		AreaName:    result.Summary.AreaName,
		PublishedAt: now.UTC(),
		Summary:     result.Summary,
		Report:      result.Report,
	}
	value, err := json.Marshal(msg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to serialize survey %s: %w", result.RunID, err)
	}
	headers := map[string]string{
		"run_id": result.RunID,
		"area":   result.Summary.AreaName,
	}
	if result.Report != nil {
		headers["condition"] = string(result.Report.OverallCondition)
	}
	return []byte(result.RunID), value, headers, nil
}

// New returns the configured publisher. Without brokers nothing is published.
func New(cfg *contract.Config, logger *zap.Logger) (contract.Publisher, error) {
	if cfg.KafkaBrokers == "" {
		return Nop{}, nil
	}
	topic := cfg.KafkaTopic
	if topic == "" {
		topic = contract.DefaultKafkaTopic
	}
	kp, err := NewKafkaPublisher(cfg.KafkaBrokers, topic, logger)
	if err != nil {
		return nil, err
	}
	return kp, nil
}

// Nop drops every survey.
type Nop struct{}

var _ contract.Publisher = Nop{} // Compile-time check

// Publish does nothing.
func (Nop) Publish(context.Context, *schema.SurveyResult) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }

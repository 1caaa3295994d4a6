// Package detector provides the Detector implementations used by surveys and
// the decorators that add retries and caching around them.
package detector

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"go.uber.org/zap"
)

// New builds the detector chain described by cfg. The cache wraps the retry
// layer so a cache hit never waits on a backoff. CSV detections depend on the
// image path rather than its bytes, so they are never cached.
func New(cfg *contract.Config, cache contract.CacheStore, logger *zap.Logger) (contract.Detector, error) {
	var base contract.Detector
	switch cfg.Detector {
	case schema.ExecDetector:
		d, err := NewExecDetector(cfg.DetectorCommand, cfg.ConfidenceThreshold)
		if err != nil {
			return nil, err
		}
		base = d
	case schema.CSVDetector:
		d, err := NewCSVDetector(cfg.DetectionsFile, cfg.ConfidenceThreshold, logger)
		if err != nil {
			return nil, err
		}
		base = d
	default:
		return nil, fmt.Errorf("unsupported detector %q", cfg.Detector)
	}

	chain := base
	if cfg.DetectRetries > 0 {
		chain = NewRetrying(chain, cfg.DetectRetries, cfg.RetryInterval, logger)
	}
	if cache != nil && cfg.Detector != schema.CSVDetector {
		chain = NewCaching(chain, cache, logger)
	}
	return chain, nil
}

// rawDetection is the loose wire shape emitted by detector processes. The
// class may arrive as a label, a bare name or a numeric id.
type rawDetection struct {
	DamageType string          `json:"damage_type"`
	ClassName  string          `json:"class_name"`
	ClassID    json.RawMessage `json:"class_id"`
	Confidence float64         `json:"confidence"`
	BBox       []float64       `json:"bbox"`
}

func (r rawDetection) damageType() schema.DamageType {
	switch {
	case r.DamageType != "":
		return schema.ParseDamageType(r.DamageType)
	case r.ClassName != "":
		return schema.ParseDamageType(r.ClassName)
	case len(r.ClassID) > 0:
		var id int
		if err := json.Unmarshal(r.ClassID, &id); err == nil {
			return schema.ParseDamageType(strconv.Itoa(id))
		}
		var s string
		if err := json.Unmarshal(r.ClassID, &s); err == nil {
			return schema.ParseDamageType(s)
		}
	}
	return ""
}

// filterDetections converts raw detections and drops those under threshold or
// without any class information.
func filterDetections(raw []rawDetection, threshold float64) []schema.Detection {
	out := make([]schema.Detection, 0, len(raw))
	for _, r := range raw {
		if math.IsNaN(r.Confidence) || math.IsInf(r.Confidence, 0) || r.Confidence < threshold {
			continue
		}
		dt := r.damageType()
		if dt == "" {
			continue
		}
		out = append(out, schema.Detection{
			DamageType: dt,
			Confidence: r.Confidence,
			BBox:       r.BBox,
		})
	}
	return out
}

package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/roadsurvey/core/agg"
	"github.com/huangsam/roadsurvey/core/algo"
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/internal/detector"
	"github.com/huangsam/roadsurvey/internal/imagestore"
	"github.com/huangsam/roadsurvey/schema"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Deps holds the collaborators of a survey run. Detector is required; the
// rest fall back to defaults, and a nil Tracker or Publisher is skipped.
type Deps struct {
	Detector   contract.Detector
	Images     contract.ImageStore
	Tracker    contract.AnalysisStore
	Publisher  contract.Publisher
	Estimator  *algo.Estimator
	Aggregator *agg.Aggregator
	Clock      contract.Clock
	Logger     *zap.Logger
}

func (d Deps) withDefaults(cfg *contract.Config) Deps {
	if d.Images == nil {
		d.Images = imagestore.New()
	}
	if d.Estimator == nil {
		d.Estimator = algo.NewEstimator(cfg.PixelToMeter)
	}
	if d.Clock == nil {
		d.Clock = contract.SystemClock{}
	}
	if d.Aggregator == nil {
		d.Aggregator = agg.NewAggregator(d.Clock, agg.DefaultPolicy())
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// RunSurvey processes every image under cfg.InputDir and aggregates the
// result for areaName. Per-image failures become error records; only a
// missing input folder, an empty folder or cancellation of ctx fail the run.
func RunSurvey(ctx context.Context, cfg *contract.Config, deps Deps, areaName string) (*schema.SurveyResult, error) {
	if deps.Detector == nil {
		return nil, errors.New("survey requires a detector")
	}
	deps = deps.withDefaults(cfg)
	if areaName == "" {
		areaName = agg.UnknownArea
	}

	images, err := DiscoverImages(cfg.InputDir)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	if !shouldSuppressHeader(ctx) {
		logSurveyHeader(os.Stderr, cfg, areaName, len(images), deps.Detector.Name())
	}

	// --- 1. Begin Survey Tracking (if configured) ---
	if deps.Tracker != nil {
		configParams := map[string]any{
			"input_dir":  cfg.InputDir,
			"flight":     cfg.FlightName,
			"detector":   deps.Detector.Name(),
			"workers":    cfg.Workers,
			"confidence": cfg.ConfidenceThreshold,
			"pixel_size": cfg.PixelToMeter,
		}
		surveyID, err := deps.Tracker.BeginSurvey(runID, areaName, deps.Clock.Now(), configParams)
		if err != nil {
			contract.LogWarn("Survey tracking initialization failed", err)
		} else {
			ctx = withSurveyID(ctx, surveyID)
		}
	}

	// --- 2. Detection and Estimation ---
	results, err := processImages(ctx, cfg, deps, areaName, images)
	if err != nil {
		return nil, err
	}

	// --- 3. Aggregation ---
	result := &schema.SurveyResult{RunID: runID, Images: results}
	processedAt := deps.Clock.Now()
	result.Report = deps.Aggregator.Summarize(areaName, result.Estimates(), len(results))
	result.Summary = buildSummary(cfg, areaName, results, processedAt)

	// --- 4. End Survey Tracking ---
	if surveyID, ok := getSurveyID(ctx); ok {
		if err := deps.Tracker.EndSurvey(surveyID, processedAt, result.Summary, result.Report); err != nil {
			contract.LogWarn("Failed to finalize survey tracking", err)
		}
	}

	if deps.Publisher != nil {
		if err := deps.Publisher.Publish(ctx, result); err != nil {
			contract.LogWarn("Failed to publish survey result", err)
		}
	}
	return result, nil
}

// processImages runs detection and estimation on a bounded pool of workers.
// Each worker writes only its own index, so output order is scan order.
func processImages(ctx context.Context, cfg *contract.Config, deps Deps, areaName string, images []string) ([]schema.ImageResult, error) {
	results := make([]schema.ImageResult, len(images))
	surveyID, tracking := getSurveyID(ctx)

	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))
	for i, path := range images {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = processImage(ctx, cfg, deps, areaName, path)
			if tracking {
				if err := deps.Tracker.RecordImage(surveyID, results[i]); err != nil {
					contract.LogWarn(fmt.Sprintf("Failed to record %s", path), err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	// An interrupted run leaves its tracking row open on purpose.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("survey aborted: %w", err)
	}
	return results, nil
}

// processImage turns one image into its result record. It never fails; a
// detector error is reported on the record itself.
func processImage(ctx context.Context, cfg *contract.Config, deps Deps, areaName, path string) schema.ImageResult {
	logger := deps.Logger.With(zap.String("image", path))
	location := ParseGPS(path)
	result := schema.ImageResult{
		Path:          path,
		Filename:      filepath.Base(path),
		Location:      location,
		LocationLabel: locationLabel(location, areaName),
	}

	shape, err := imagestore.ShapeOrDefault(deps.Images, path)
	if err != nil {
		logger.Debug("image shape unavailable, using default", zap.Error(err))
	}
	result.Shape = shape

	timeout := cfg.DetectTimeout
	if timeout <= 0 {
		timeout = contract.DefaultDetectTimeout
	}
	detectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	detectCtx, hit := detector.WithCacheHitFlag(detectCtx)

	start := time.Now()
	detections, err := deps.Detector.Detect(detectCtx, path)
	result.Cached = hit.Load()
	if err != nil {
		logger.Warn("detection failed", zap.Error(err))
		result.Status = schema.ErrorImage
		result.Error = err.Error()
		return result
	}

	if len(detections) == 0 {
		result.Status = schema.CleanImage
		logger.Debug("no damage", zap.Duration("elapsed", time.Since(start)), zap.Bool("cached", result.Cached))
		return result
	}

	result.Status = schema.DamagedImage
	result.Detections = detections
	result.Estimates = make([]schema.DamageEstimate, 0, len(detections))
	for _, det := range detections {
		est := deps.Estimator.Analyze(det, shape)
		est.SourceImage = path
		est.Location = location
		result.Estimates = append(result.Estimates, est)
	}
	rollupImage(&result)
	logger.Info("damage found",
		zap.Int("damages", len(detections)),
		zap.String("most_severe", string(result.MostSevere)),
		zap.Float64("cost", result.TotalRepairCost),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("cached", result.Cached),
	)
	return result
}

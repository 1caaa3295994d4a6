// Package core has the survey pipeline: image discovery, detection, per-image
// estimation and the area roll-up.
package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/roadsurvey/core/agg"
	"github.com/huangsam/roadsurvey/core/algo"
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/internal/detector"
	"github.com/huangsam/roadsurvey/internal/outwriter"
	"github.com/huangsam/roadsurvey/internal/publish"
	"github.com/huangsam/roadsurvey/schema"
)

// ExecutorFunc defines the function signature for commands backed by the stores.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

var _ ExecutorFunc = ExecuteSurvey

// ExecuteSurvey runs a survey over cfg.InputDir and prints the result.
// It serves as the main entry point for the 'survey' command.
func ExecuteSurvey(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	result, err := Survey(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteSurvey(result, cfg, duration)
}

// Survey wires the production detector chain, tracking store and publisher
// and runs the survey. A nil mgr disables caching and tracking.
func Survey(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.SurveyResult, error) {
	logger, err := contract.NewLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var cache contract.CacheStore
	var tracker contract.AnalysisStore
	if mgr != nil {
		cache = mgr.GetDetectionStore()
		tracker = mgr.GetAnalysisStore()
	}

	det, err := detector.New(cfg, cache, logger)
	if err != nil {
		return nil, err
	}
	pub, err := publish.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := pub.Close(); err != nil {
			contract.LogWarn("Failed to close publisher", err)
		}
	}()

	deps := Deps{
		Detector:  det,
		Tracker:   tracker,
		Publisher: pub,
		Logger:    logger,
	}
	return RunSurvey(ctx, cfg, deps, cfg.ResolveAreaName())
}

// ExecuteEstimate prints the repair estimate of one detection.
func ExecuteEstimate(cfg *contract.Config, det schema.Detection, shape schema.ImageShape) error {
	est := algo.NewEstimator(cfg.PixelToMeter).Analyze(det, shape)
	return outwriter.NewOutWriter().WriteEstimate(est, cfg)
}

// ExecuteSummarize aggregates the estimates stored in path and prints the
// area report. totalImages <= 0 means infer it from the file.
func ExecuteSummarize(cfg *contract.Config, path string, totalImages int) error {
	input, err := LoadEstimates(path)
	if err != nil {
		return err
	}

	areaName := cfg.ResolveAreaName()
	if cfg.AreaName == "" && cfg.FlightName == "" && input.AreaName != "" {
		areaName = input.AreaName
	}
	if totalImages <= 0 {
		totalImages = input.TotalImages
	}

	report := agg.NewAggregator(contract.SystemClock{}, agg.DefaultPolicy()).Summarize(areaName, input.Estimates, totalImages)
	return outwriter.NewOutWriter().WriteReport(report, cfg)
}

// EstimateInput is what a summarize run reads from disk.
type EstimateInput struct {
	Estimates   []schema.DamageEstimate
	TotalImages int
	AreaName    string
}

// LoadEstimates reads either a JSON array of estimates or a saved survey
// result. For a bare array the image count is the number of distinct source
// images, or the number of estimates when none are named.
func LoadEstimates(path string) (*EstimateInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read estimates: %w", err)
	}
	return ParseEstimates(data)
}

// ParseEstimates decodes the formats accepted by LoadEstimates.
func ParseEstimates(data []byte) (*EstimateInput, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("estimates input is empty")
	}

	switch trimmed[0] {
	case '[':
		var estimates []schema.DamageEstimate
		if err := json.Unmarshal(trimmed, &estimates); err != nil {
			return nil, fmt.Errorf("invalid estimates array: %w", err)
		}
		return &EstimateInput{Estimates: estimates, TotalImages: distinctImages(estimates)}, nil
	case '{':
		var result schema.SurveyResult
		if err := json.Unmarshal(trimmed, &result); err != nil {
			return nil, fmt.Errorf("invalid survey result: %w", err)
		}
		total := result.Summary.TotalImages
		if total == 0 {
			total = len(result.Images)
		}
		return &EstimateInput{Estimates: result.Estimates(), TotalImages: total, AreaName: result.Summary.AreaName}, nil
	default:
		return nil, errors.New("estimates input must be a JSON array or a survey result object")
	}
}

func distinctImages(estimates []schema.DamageEstimate) int {
	seen := make(map[string]struct{})
	for _, est := range estimates {
		if est.SourceImage != "" {
			seen[est.SourceImage] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return len(estimates)
	}
	return len(seen)
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/roadsurvey/core"
	"github.com/huangsam/roadsurvey/core/agg"
	"github.com/huangsam/roadsurvey/core/algo"
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/internal/imagestore"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// surveyResponse is the survey_folder payload.
type surveyResponse struct {
	RunID   string               `json:"run_id"`
	Summary schema.SurveySummary `json:"summary"`
	Report  *schema.AreaReport   `json:"area_report"`
	Images  []schema.ImageResult `json:"images,omitempty"`
}

func (h *toolHandler) handleEstimateDamage(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	damageType := request.GetString("damage_type", "")
	if damageType == "" {
		return mcp.NewToolResultError("damage_type is required"), nil
	}
	confidence := request.GetFloat("confidence", -1)
	if confidence < 0 || confidence > 1 {
		return mcp.NewToolResultError("confidence must be between 0 and 1"), nil
	}
	bbox, err := floatSlice(request.GetArguments()["bbox"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid bbox: %v", err)), nil
	}

	ratio := request.GetFloat("pixel_ratio", h.baseCfg.PixelToMeter)
	det := schema.Detection{
		DamageType: schema.ParseDamageType(damageType),
		Confidence: confidence,
		BBox:       bbox,
	}
	est := algo.NewEstimator(ratio).Analyze(det, imagestore.DefaultShape)
	return jsonResult(est)
}

func (h *toolHandler) handleSummarizeArea(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input *core.EstimateInput
	var err error
	if raw, ok := request.GetArguments()["estimates"]; ok && raw != nil {
		data, merr := json.Marshal(raw)
		if merr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid estimates: %v", merr)), nil
		}
		input, err = core.ParseEstimates(data)
	} else if path := request.GetString("path", ""); path != "" {
		input, err = core.LoadEstimates(path)
	} else {
		return mcp.NewToolResultError("either estimates or path is required"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot read estimates: %v", err)), nil
	}

	areaName := request.GetString("area_name", input.AreaName)
	totalImages := request.GetInt("total_images", 0)
	if totalImages <= 0 {
		totalImages = input.TotalImages
	}

	report := agg.NewAggregator(contract.SystemClock{}, agg.DefaultPolicy()).Summarize(areaName, input.Estimates, totalImages)
	return jsonResult(report)
}

func (h *toolHandler) handleSurveyFolder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputDir = request.GetString("input_dir", "")
	cfg.AreaName = request.GetString("area_name", cfg.AreaName)
	cfg.FlightName = request.GetString("flight_name", cfg.FlightName)
	if f := request.GetString("detections_file", ""); f != "" {
		cfg.Detector = schema.CSVDetector
		cfg.DetectionsFile = f
	}
	cfg.ConfidenceThreshold = request.GetFloat("confidence", cfg.ConfidenceThreshold)
	if cfg.ConfidenceThreshold < 0 || cfg.ConfidenceThreshold > 1 {
		return mcp.NewToolResultError("confidence must be between 0 and 1"), nil
	}

	if err := contract.ValidateSurveyInputs(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid survey parameters: %v", err)), nil
	}

	result, err := core.Survey(core.QuietContext(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("survey failed: %v", err)), nil
	}

	resp := surveyResponse{RunID: result.RunID, Summary: result.Summary, Report: result.Report}
	if request.GetBool("include_images", false) {
		resp.Images = result.Images
	}
	return jsonResult(resp)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// floatSlice converts a decoded JSON array into float64 values.
func floatSlice(raw any) ([]float64, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array, got %T", raw)
	}
	out := make([]float64, 0, len(items))
	for i, item := range items {
		v, ok := item.(float64)
		if !ok {
			return nil, fmt.Errorf("element %d is %T, not a number", i, item)
		}
		out = append(out, v)
	}
	return out, nil
}

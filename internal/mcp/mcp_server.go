// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the roadsurvey MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Road Survey Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: estimate_damage ---
	s.AddTool(mcp.NewTool("estimate_damage",
		mcp.WithDescription("Estimate repair cost, time, priority and crew for one detected road damage."),
		mcp.WithString("damage_type", mcp.Description("Damage class, e.g. D40_Pothole, D20_Alligator_Crack or a class id 0-5."), mcp.Required()),
		mcp.WithNumber("confidence", mcp.Description("Detector confidence between 0 and 1."), mcp.Required()),
		mcp.WithArray("bbox", mcp.Description("Bounding box [x1, y1, x2, y2] in pixels."), mcp.Items(map[string]any{"type": "number"})),
		mcp.WithNumber("pixel_ratio", mcp.Description("Meters per pixel. Defaults to the server setting.")),
	), h.handleEstimateDamage)

	// --- 2. Tool: summarize_area ---
	s.AddTool(mcp.NewTool("summarize_area",
		mcp.WithDescription("Aggregate damage estimates into an area condition report with budget, timeline and risk."),
		mcp.WithArray("estimates", mcp.Description("Damage estimates as returned by estimate_damage."), mcp.Items(map[string]any{"type": "object"})),
		mcp.WithString("path", mcp.Description("Path to a JSON file of estimates or a saved survey result, used when estimates is empty.")),
		mcp.WithString("area_name", mcp.Description("Area name for the report.")),
		mcp.WithNumber("total_images", mcp.Description("Number of images surveyed, damaged or not.")),
	), h.handleSummarizeArea)

	// --- 3. Tool: survey_folder ---
	s.AddTool(mcp.NewTool("survey_folder",
		mcp.WithDescription("Run the detector over a folder of road images and return the survey summary and area report."),
		mcp.WithString("input_dir", mcp.Description("Folder of drone images."), mcp.Required()),
		mcp.WithString("area_name", mcp.Description("Area name for the report.")),
		mcp.WithString("flight_name", mcp.Description("Flight name, used as the area name when none is given.")),
		mcp.WithString("detections_file", mcp.Description("CSV of precomputed detections; selects the csv detector.")),
		mcp.WithNumber("confidence", mcp.Description("Minimum detection confidence between 0 and 1.")),
		mcp.WithBoolean("include_images", mcp.Description("Include per-image results in the response.")),
	), h.handleSurveyFolder)

	return s
}

// StartMCPServer starts the roadsurvey MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}

// Package main provides a performance benchmarking tool for the roadsurvey CLI.
// It generates synthetic survey folders of increasing size, runs the survey
// several times per folder, treats the first cached run as cold and averages
// the rest as warm, and writes a CSV for performance analysis.
//
// Prerequisites:
// - roadsurvey binary installed and available in PATH
//
// Usage: go run benchmark/main.go [detector-cmd]
//
//	detector-cmd: optional exec detector, e.g. "python detect.py"; without it
//	the csv detector reads a generated detections file. The csv detector is
//	never cached, so cold and warm times only differ with an exec detector.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Survey      string
	Images      int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	DetectorCmd string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Surveys     map[string]int
	Order       []string
}

func main() {
	if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [detector-cmd]\n", os.Args[0])
		os.Exit(1)
	}

	workDir, err := os.MkdirTemp("", "roadsurvey-bench-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     10 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Surveys:     map[string]int{"small": 50, "medium": 500, "large": 5000},
		Order:       []string{"small", "medium", "large"},
	}
	if len(os.Args) == 2 {
		config.DetectorCmd = os.Args[1]
	}

	if _, err := exec.LookPath("roadsurvey"); err != nil {
		fmt.Printf("Prerequisites check failed: roadsurvey binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	printSummary(results)
}

// generateSurvey writes n placeholder images and a detections CSV with one
// finding on every third image.
func generateSurvey(dir string, n int) (string, error) {
	imageDir := filepath.Join(dir, "images")
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return "", err
	}
	detectionsPath := filepath.Join(dir, "detections.csv")
	file, err := os.Create(detectionsPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	if err := writer.Write([]string{"image", "class_id", "confidence", "bbox_x1", "bbox_y1", "bbox_x2", "bbox_y2"}); err != nil {
		return "", err
	}

	for i := range n {
		name := fmt.Sprintf("IMG_%05d_lat40.%04d_lon-74.%04d.jpg", i, i, i)
		if err := os.WriteFile(filepath.Join(imageDir, name), fmt.Appendf(nil, "frame-%d", i), 0o644); err != nil {
			return "", err
		}
		if i%3 != 0 {
			continue
		}
		size := 50 + (i%7)*40
		row := []string{name, fmt.Sprint(i % 7), fmt.Sprintf("%.2f", 0.35+float64(i%6)/10), "0", "0", fmt.Sprint(size), fmt.Sprint(size)}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	return detectionsPath, nil
}

// runBenchmarks executes the benchmark suite across every generated survey
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d surveys, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Order), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, name := range config.Order {
		images := config.Surveys[name]
		surveyDir := filepath.Join(config.WorkDir, name)
		detections, err := generateSurvey(surveyDir, images)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", name, err)
			continue
		}
		results = append(results, runBenchmarkSuite(config, name, images, surveyDir, detections))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one survey
func runBenchmarkSuite(config BenchmarkConfig, name string, images int, surveyDir, detections string) BenchmarkResult {
	fmt.Printf("Running survey benchmark on %s (%d images)\n", name, images)
	cacheDB := filepath.Join(surveyDir, "cache.db")

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, surveyDir, detections, cacheBackend, cacheDB, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs against a fresh cache file
	_ = os.Remove(cacheDB)
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}
	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Survey:      name,
		Images:      images,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark runs the survey numRuns times and returns the cold time and warm times
func runBenchmark(config BenchmarkConfig, surveyDir, detections, cacheBackend, cacheDB string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"survey", filepath.Join(surveyDir, "images"),
		"--cache-backend", cacheBackend,
		"--workers", fmt.Sprint(config.Workers),
		"--limit", "1",
	}
	if cacheBackend != "none" {
		args = append(args, "--cache-db-connect", cacheDB)
	}
	if config.DetectorCmd != "" {
		args = append(args, "--detector-cmd", config.DetectorCmd)
	} else {
		args = append(args, "--detector", "csv", "--detections-file", detections)
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("roadsurvey", args...)
		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "completed in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/roadsurvey_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"survey", "images", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		row := []string{result.Survey, fmt.Sprint(result.Images), result.NoCacheTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-8s (%5d images): No-cache: %s, Cold: %s, Warm: %s\n",
			result.Survey, result.Images, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}

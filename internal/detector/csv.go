package detector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"go.uber.org/zap"
)

// CSVDetector serves detections precomputed by an offline model run. Rows
// naming a directory match images whose path ends with that relative path;
// bare file names match by base name only when no path row applies. Images
// without rows are clean.
type CSVDetector struct {
	path      string
	threshold float64
	byPath    map[string][]schema.Detection
	byName    map[string][]schema.Detection
	logger    *zap.Logger

	mu       sync.Mutex
	nameUser map[string]string // base name -> first image matched by name
	warned   map[string]struct{}
}

var _ contract.Detector = &CSVDetector{} // Compile-time check

// Header aliases accepted for each column.
var (
	imageColumns = []string{"image", "filename", "image_name", "image_path"}
	classColumns = []string{"class_name", "damage_type", "class_id"}
	bboxColumns  = []string{"bbox_x1", "bbox_y1", "bbox_x2", "bbox_y2"}
)

// NewCSVDetector loads every row of the detections file up front.
func NewCSVDetector(path string, threshold float64, logger *zap.Logger) (*CSVDetector, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open detections file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if logger == nil {
		logger = zap.NewNop()
	}
	d := &CSVDetector{
		path:      path,
		threshold: threshold,
		byPath:    make(map[string][]schema.Detection),
		byName:    make(map[string][]schema.Detection),
		logger:    logger,
		nameUser:  make(map[string]string),
		warned:    make(map[string]struct{}),
	}
	if err := d.load(file, logger); err != nil {
		return nil, fmt.Errorf("failed to read detections file %q: %w", path, err)
	}
	return d, nil
}

func (d *CSVDetector) load(r io.Reader, logger *zap.Logger) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := firstColumn(colMap, imageColumns); !ok {
		return errors.New("missing image column (expected image, filename, image_name or image_path)")
	}
	if _, ok := firstColumn(colMap, classColumns); !ok {
		return errors.New("missing class column (expected class_name, damage_type or class_id)")
	}

	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("skipping unreadable detections row", zap.Int("line", line), zap.Error(err))
			continue
		}
		image, det, err := parseRow(row, colMap)
		if err != nil {
			logger.Warn("skipping invalid detections row", zap.Int("line", line), zap.Error(err))
			continue
		}
		index := d.byName
		if strings.Contains(image, "/") {
			index = d.byPath
		}
		if _, seen := index[image]; !seen {
			index[image] = nil
		}
		if det.Confidence < d.threshold {
			continue
		}
		index[image] = append(index[image], det)
	}
	return nil
}

func parseRow(row []string, colMap map[string]int) (string, schema.Detection, error) {
	cell := func(names []string) string {
		if idx, ok := firstColumn(colMap, names); ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	image := imageKey(cell(imageColumns))
	if image == "" {
		return "", schema.Detection{}, errors.New("empty image name")
	}
	class := cell(classColumns)
	if class == "" {
		return "", schema.Detection{}, errors.New("empty class")
	}
	confidence, err := strconv.ParseFloat(cell([]string{"confidence"}), 64)
	if err != nil {
		return "", schema.Detection{}, fmt.Errorf("invalid confidence: %w", err)
	}
	if math.IsNaN(confidence) || math.IsInf(confidence, 0) {
		return "", schema.Detection{}, fmt.Errorf("confidence %v is not a finite number", confidence)
	}

	var bbox []float64
	for _, col := range bboxColumns {
		raw := cell([]string{col})
		if raw == "" {
			bbox = nil
			break
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", schema.Detection{}, fmt.Errorf("invalid %s: %w", col, err)
		}
		bbox = append(bbox, v)
	}

	return image, schema.Detection{
		DamageType: schema.ParseDamageType(class),
		Confidence: confidence,
		BBox:       bbox,
	}, nil
}

func firstColumn(colMap map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := colMap[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

// Name implements the Detector interface.
func (d *CSVDetector) Name() string {
	return fmt.Sprintf("csv:%s@%.2f", d.path, d.threshold)
}

// Detect implements the Detector interface.
func (d *CSVDetector) Detect(ctx context.Context, imagePath string) ([]schema.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dets := d.lookup(imagePath)
	out := make([]schema.Detection, len(dets))
	copy(out, dets)
	return out, nil
}

// lookup prefers the longest path row that is a suffix of imagePath, then
// falls back to the base name.
func (d *CSVDetector) lookup(imagePath string) []schema.Detection {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(imagePath)), "/")
	for i := 0; i < len(parts)-1; i++ {
		if dets, ok := d.byPath[strings.Join(parts[i:], "/")]; ok {
			return dets
		}
	}

	base := parts[len(parts)-1]
	dets, ok := d.byName[base]
	if ok {
		d.noteNameMatch(base, imagePath)
	}
	return dets
}

// noteNameMatch warns once when a bare file name row is applied to more than
// one image.
func (d *CSVDetector) noteNameMatch(base, imagePath string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	first, seen := d.nameUser[base]
	if !seen {
		d.nameUser[base] = imagePath
		return
	}
	if first == imagePath {
		return
	}
	if _, done := d.warned[base]; done {
		return
	}
	d.warned[base] = struct{}{}
	d.logger.Warn("detections row matches several images; qualify it with a directory",
		zap.String("name", base),
		zap.String("first", first),
		zap.String("also", imagePath),
	)
}

// Images returns how many distinct images the file mentions.
func (d *CSVDetector) Images() int {
	return len(d.byPath) + len(d.byName)
}

// imageKey normalizes the image column: slash separated, cleaned, without a
// leading "./" or "/". Keys without a directory part are bare file names.
func imageKey(raw string) string {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/")
	if raw == "" {
		return ""
	}
	key := strings.TrimLeft(path.Clean(raw), "/")
	if key == "." || key == "" {
		return ""
	}
	return key
}

package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/roadsurvey/schema"
)

// Sentinel errors for survey input problems. Both are fatal before any image
// is processed.
var (
	ErrInputFolder = errors.New("input folder is missing or not a directory")
	ErrNoImages    = errors.New("no images found in input folder")
)

// ImageExtensions are the file extensions picked up by a survey, lowercase.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".tif"}

// IsImageFile reports whether name has a survey image extension.
func IsImageFile(name string) bool {
	return slices.Contains(ImageExtensions, strings.ToLower(filepath.Ext(name)))
}

// DiscoverImages walks root recursively and returns image paths in lexical order.
func DiscoverImages(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInputFolder, root)
	}

	var images []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsImageFile(d.Name()) {
			images = append(images, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoImages, root)
	}
	slices.Sort(images)
	return images, nil
}

// ParseGPS extracts coordinates from names like img_lat40.7128_lon-74.0060_1200.jpg.
// Both coordinates must be present and valid, otherwise nil is returned.
func ParseGPS(filename string) *schema.GeoPoint {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var lat, lon *float64
	for part := range strings.SplitSeq(stem, "_") {
		switch {
		case strings.HasPrefix(part, "lat"):
			v, err := strconv.ParseFloat(part[3:], 64)
			if err != nil {
				return nil
			}
			lat = &v
		case strings.HasPrefix(part, "lon"):
			v, err := strconv.ParseFloat(part[3:], 64)
			if err != nil {
				return nil
			}
			lon = &v
		}
	}
	if lat == nil || lon == nil {
		return nil
	}
	// Negated so NaN fails the range check too.
	if !(*lat >= -90 && *lat <= 90 && *lon >= -180 && *lon <= 180) {
		return nil
	}
	return &schema.GeoPoint{Latitude: *lat, Longitude: *lon}
}

// locationLabel is the GPS pair when known, else the area name.
func locationLabel(p *schema.GeoPoint, areaName string) string {
	if p == nil {
		return areaName
	}
	return fmt.Sprintf("%.6f, %.6f", p.Latitude, p.Longitude)
}

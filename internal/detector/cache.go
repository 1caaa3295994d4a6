package detector

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"go.uber.org/zap"
)

// cacheVersion is bumped whenever the cached payload shape changes.
const cacheVersion = 1

// Caching memoizes detections by image content and detector identity so a
// re-survey of the same flight skips the model entirely.
type Caching struct {
	next   contract.Detector
	store  contract.CacheStore
	logger *zap.Logger
}

var _ contract.Detector = &Caching{} // Compile-time check

// NewCaching wraps next with a read-through cache backed by store.
func NewCaching(next contract.Detector, store contract.CacheStore, logger *zap.Logger) *Caching {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Caching{next: next, store: store, logger: logger}
}

// Name implements the Detector interface.
func (c *Caching) Name() string {
	return c.next.Name()
}

// Detect implements the Detector interface.
func (c *Caching) Detect(ctx context.Context, imagePath string) ([]schema.Detection, error) {
	key, err := c.cacheKey(imagePath)
	if err != nil {
		// Unreadable images still go to the detector, which reports the real error.
		return c.next.Detect(ctx, imagePath)
	}

	if value, version, _, err := c.store.Get(key); err == nil && version == cacheVersion {
		var dets []schema.Detection
		if err := json.Unmarshal(value, &dets); err == nil {
			c.logger.Debug("detection cache hit", zap.String("image", imagePath))
			if dets == nil {
				dets = []schema.Detection{}
			}
			markCacheHit(ctx)
			return dets, nil
		}
	}

	dets, err := c.next.Detect(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	if value, err := json.Marshal(dets); err == nil {
		if err := c.store.Set(key, value, cacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Cannot write detection cache", err)
		}
	}
	return dets, nil
}

// cacheKey hashes the image bytes together with the detector name.
func (c *Caching) cacheKey(imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	_, _ = fmt.Fprintf(h, "|%s", c.next.Name())
	return hex.EncodeToString(h.Sum(nil)), nil
}

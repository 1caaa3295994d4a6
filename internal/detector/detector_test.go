package detector

import (
	"testing"
	"time"

	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/internal/iocache"
	"github.com/huangsam/roadsurvey/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewChain(t *testing.T) {
	csvPath := writeCSV(t, "image,class_name,confidence\na.jpg,D40,0.9\n")

	tests := []struct {
		name        string
		cfg         contract.Config
		cache       contract.CacheStore
		expectError bool
		check       func(t *testing.T, d contract.Detector)
	}{
		{
			name: "plain exec",
			cfg:  contract.Config{Detector: schema.ExecDetector, DetectorCommand: []string{"detect"}},
			check: func(t *testing.T, d contract.Detector) {
				assert.IsType(t, &ExecDetector{}, d)
			},
		},
		{
			name: "csv with retries",
			cfg:  contract.Config{Detector: schema.CSVDetector, DetectionsFile: csvPath, DetectRetries: 2, RetryInterval: time.Millisecond},
			check: func(t *testing.T, d contract.Detector) {
				assert.IsType(t, &Retrying{}, d)
			},
		},
		{
			name:  "cache outermost",
			cfg:   contract.Config{Detector: schema.ExecDetector, DetectorCommand: []string{"detect"}, DetectRetries: 1},
			cache: &iocache.MockCacheStore{},
			check: func(t *testing.T, d contract.Detector) {
				c, ok := d.(*Caching)
				require.True(t, ok)
				assert.IsType(t, &Retrying{}, c.next)
			},
		},
		{
			name:  "csv is never cached",
			cfg:   contract.Config{Detector: schema.CSVDetector, DetectionsFile: csvPath},
			cache: &iocache.MockCacheStore{},
			check: func(t *testing.T, d contract.Detector) {
				assert.IsType(t, &CSVDetector{}, d)
			},
		},
		{
			name:        "exec without command",
			cfg:         contract.Config{Detector: schema.ExecDetector},
			expectError: true,
		},
		{
			name:        "unknown kind",
			cfg:         contract.Config{Detector: "magic"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(&tt.cfg, tt.cache, zap.NewNop())
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, d)
		})
	}
}

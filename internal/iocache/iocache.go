// Package iocache persists detection results and survey history.
package iocache

import (
	"sync"

	"github.com/huangsam/roadsurvey/internal/contract"
)

// CacheStoreManager manages the detection cache and the survey tracking store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	detection    contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetDetectionStore returns the detection CacheStore, or nil when caching is off.
func (mgr *CacheStoreManager) GetDetectionStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.detection
}

// GetAnalysisStore returns the survey AnalysisStore, or nil when tracking is off.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}

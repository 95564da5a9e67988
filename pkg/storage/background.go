package storage

import (
	"runtime"
	"time"
)

// GetMemoryStats returns current memory usage statistics
func (se *StorageEngine) GetMemoryStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	se.mu.RLock()
	defer se.mu.RUnlock()

	documents := 0
	for _, collection := range se.data {
		documents += len(collection.Documents)
	}

	return map[string]interface{}{
		"alloc_mb":       m.Alloc / 1024 / 1024,
		"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
		"sys_mb":         m.Sys / 1024 / 1024,
		"num_goroutines": runtime.NumGoroutine(),
		"collections":    len(se.data),
		"documents":      documents,
	}
}

// StartBackgroundWorkers starts background save workers
func (se *StorageEngine) StartBackgroundWorkers() {
	if !se.backgroundSave || se.dataFile == "" {
		return
	}

	se.backgroundWg.Add(1)
	go func() {
		defer se.backgroundWg.Done()
		ticker := time.NewTicker(se.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				se.saveDirtyCollections()
			case <-se.stopChan:
				return
			}
		}
	}()
}

// StopBackgroundWorkers stops background workers. It is safe to call more than once.
func (se *StorageEngine) StopBackgroundWorkers() {
	se.stopOnce.Do(func() {
		close(se.stopChan)
	})
	se.backgroundWg.Wait()
}

// saveDirtyCollections is the background save tick
func (se *StorageEngine) saveDirtyCollections() {
	start := time.Now()
	if err := se.Save(); err != nil {
		se.logger.Errorf("Background save failed: %v", err)
		return
	}
	se.logger.Debugf("Background save tick completed in %v", time.Since(start))
}

package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/adfharrison1/bookreport/pkg/domain"
	"github.com/adfharrison1/bookreport/pkg/indexing"
)

// SaveToFile writes every collection, index definition and ID counter to
// filename. The file is replaced atomically.
func (se *StorageEngine) SaveToFile(filename string) error {
	se.mu.RLock()
	defer se.mu.RUnlock()
	return se.saveToFileLocked(filename)
}

// saveToFileLocked writes the snapshot; the caller holds the lock
func (se *StorageEngine) saveToFileLocked(filename string) error {
	storageData := newSnapshotData()
	for collName, collection := range se.data {
		storageData.Collections[collName] = make(map[string]interface{}, len(collection.Documents))
		for docID, doc := range collection.Documents {
			storageData.Collections[collName][docID] = map[string]interface{}(doc)
		}
	}
	storageData.Indexes = se.indexEngine.ExportDefinitions()
	for collName, n := range se.idCounters {
		storageData.Counters[collName] = n
	}
	storageData.Metadata["saved_at"] = time.Now().UTC().Format(time.RFC3339)
	msgpackData, err := msgpack.Marshal(storageData)
	if err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	flags := uint8(0)
	payload := msgpackData
	compressedData := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, compressedData, hashTable[:])
	if err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}
	// n == 0 means the payload is incompressible; store it raw
	if n > 0 {
		flags |= FlagCompressed
		payload = compressedData[:n]
	}

	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	tmp := filename + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteSnapshotHeader(file, flags, msgpackData); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := file.Write(payload); err != nil {
		file.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	return nil
}

// LoadFromFile replaces the engine's contents with the snapshot in
// filename. A missing file leaves the engine empty.
func (se *StorageEngine) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	storageData, err := readStorageData(file)
	if err != nil {
		return err
	}

	se.mu.Lock()
	defer se.mu.Unlock()

	se.data = make(map[string]*domain.DocumentSet, len(storageData.Collections))
	se.collections = make(map[string]*CollectionInfo, len(storageData.Collections))
	se.idCounters = make(map[string]int64, len(storageData.Counters))
	se.indexEngine = indexing.NewIndexEngine()

	for collName, docs := range storageData.Collections {
		collection := se.createCollectionInternal(collName)
		for docID, docData := range docs {
			if doc, ok := docData.(map[string]interface{}); ok {
				collection.Documents[docID] = domain.Document(doc)
				se.observeID(collName, docID)
			}
		}
		if n := storageData.Counters[collName]; n > se.idCounters[collName] {
			se.idCounters[collName] = n
		}

		for name, fields := range storageData.Indexes[collName] {
			if _, exists := se.indexEngine.GetIndex(collName, name); !exists {
				if err := se.indexEngine.CreateIndex(collName, name, fields); err != nil {
					return fmt.Errorf("failed to restore index %s on %s: %w", name, collName, err)
				}
			}
		}
		for _, name := range se.indexEngine.GetIndexes(collName) {
			if err := se.indexEngine.BuildIndexForCollection(collName, name, collection); err != nil {
				return err
			}
		}

		info := se.collections[collName]
		info.DocumentCount = int64(len(collection.Documents))
		info.State = CollectionStateLoaded

		se.logger.Infof("Loaded collection '%s' with %d documents, restored ID counter to %d",
			collName, len(collection.Documents), se.idCounters[collName])
	}

	return nil
}

func readStorageData(r io.Reader) (*SnapshotData, error) {
	header, err := ReadSnapshotHeader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid file header: %w", err)
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	if header.Flags&FlagCompressed != 0 {
		decompressedData := make([]byte, header.RawSize)
		n, err := lz4.UncompressBlock(payload, decompressedData)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress data: %w", err)
		}
		payload = decompressedData[:n]
	}
	if err := header.Verify(payload); err != nil {
		return nil, err
	}

	var storageData SnapshotData
	if err := msgpack.NewDecoder(bytes.NewReader(payload)).Decode(&storageData); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	return &storageData, nil
}

// Save snapshots the engine to its data file when anything changed since
// the last save. It is a no-op for an engine without a data file.
func (se *StorageEngine) Save() error {
	if se.dataFile == "" {
		return nil
	}

	se.mu.Lock()
	defer se.mu.Unlock()

	dirty := 0
	for _, info := range se.collections {
		if info.State == CollectionStateDirty {
			dirty++
		}
	}
	if dirty == 0 {
		return nil
	}

	if err := se.saveToFileLocked(se.dataFile); err != nil {
		return err
	}

	for name, info := range se.collections {
		if _, exists := se.data[name]; !exists {
			delete(se.collections, name) // dropped collection now gone from disk
			continue
		}
		info.State = CollectionStateLoaded
	}

	se.logger.Infof("Saved %d dirty collections to %s", dirty, se.dataFile)
	return nil
}

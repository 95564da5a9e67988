package storage

import "time"

// CollectionState tracks whether a collection differs from the last snapshot
type CollectionState int

const (
	CollectionStateLoaded CollectionState = iota
	CollectionStateDirty
)

func (s CollectionState) String() string {
	if s == CollectionStateDirty {
		return "dirty"
	}
	return "loaded"
}

// CollectionInfo is the metadata kept per collection
type CollectionInfo struct {
	Name          string
	DocumentCount int64
	LastModified  time.Time
	State         CollectionState
}

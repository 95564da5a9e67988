package domain

import "errors"

var (
	ErrCollectionNotFound = errors.New("collection does not exist")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrInvalidOptions     = errors.New("invalid options")
	ErrInvalidPipeline    = errors.New("invalid pipeline")
	ErrIndexConflict      = errors.New("index conflict")
	ErrStoreClosed        = errors.New("store is closed")
)

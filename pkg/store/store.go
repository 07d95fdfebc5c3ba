// Package store persists generated circuit templates with deduplication.
//
// Every template is keyed by its canonical content hash, so inserting the
// same circuit twice leaves a single row regardless of which run produced
// it. Two backends implement the [Store] interface: Mongo for the shared
// cluster database and an in-memory map for tests and offline runs.
package store

import (
	"context"
	"errors"
)

// ErrDuplicate is returned by Insert when a record with the same canonical
// hash already exists.
var ErrDuplicate = errors.New("duplicate template")

// Filter narrows List queries. Zero values leave the dimension
// unconstrained; Limit 0 means no limit.
type Filter struct {
	Width int
	Depth int
	Limit int
}

// Stats summarizes the stored template population.
type Stats struct {
	Total       int         `json:"total"`
	ByWidth     map[int]int `json:"by_width"`
	AvgHardness float64     `json:"avg_hardness"`
}

// WidthDepthCount is one row of the width/depth census.
type WidthDepthCount struct {
	Width int `json:"width"`
	Depth int `json:"depth"`
	Count int `json:"count"`
}

// Store is the persistence interface for circuit templates.
//
// Get returns (nil, nil) when no record matches the hash; absence is not
// an error. List orders records by hardness score, highest first.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	InsertBatch(ctx context.Context, recs []*Record) (added, duplicates int, err error)
	Get(ctx context.Context, hash string) (*Record, error)
	Exists(ctx context.Context, hash string) (bool, error)
	List(ctx context.Context, f Filter) ([]*Record, error)
	CountByWidthDepth(ctx context.Context) ([]WidthDepthCount, error)
	Stats(ctx context.Context) (*Stats, error)
	Close(ctx context.Context) error
}

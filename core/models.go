package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for claim and variation records.
// IDs are allocated from per-collection database sequences, so the same
// value may identify one record in each collection.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Collection names one of the record stores the application keeps.
type Collection string

const (
	// CollectionClaims holds contractor and consultant claims.
	CollectionClaims Collection = "claims"
	// CollectionVariations holds requested contract variations.
	CollectionVariations Collection = "variations"
)

// Collections lists every known collection in merge order.
var Collections = []Collection{CollectionClaims, CollectionVariations}

// ResultType tags a search result with the kind of record it came from.
type ResultType string

const (
	ResultTypeClaim     ResultType = "claim"
	ResultTypeVariation ResultType = "variation"
)

// Module labels shown next to search results.
const (
	ModuleClaims     = "Claims Management"
	ModuleVariations = "Variations Management"
)

// ResultType returns the search result tag for records of this collection.
func (c Collection) ResultType() ResultType {
	switch c {
	case CollectionClaims:
		return ResultTypeClaim
	case CollectionVariations:
		return ResultTypeVariation
	}
	return ""
}

// Module returns the human-readable module label for this collection.
func (c Collection) Module() string {
	switch c {
	case CollectionClaims:
		return ModuleClaims
	case CollectionVariations:
		return ModuleVariations
	}
	return ""
}

// Status is the workflow state of a claim or variation.
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusClosed      Status = "closed"
)

// Record is a single claim or variation row.
// Which collection it belongs to is a property of the repository holding it.
type Record struct {
	Id          ID
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time // When the claim or variation was raised
	UpdatedAt   time.Time // When the record was last written
}

// SearchResult is one row of a global search response.
// Results are transient and never persisted.
type SearchResult struct {
	Id          ID         `json:"id"`
	Title       string     `json:"title"`
	Type        ResultType `json:"type"`
	Module      string     `json:"module"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	Description string     `json:"description,omitempty"`
}

// NewSearchResult tags a record from the given collection as a search result.
func NewSearchResult(collection Collection, record *Record) SearchResult {
	return SearchResult{
		Id:          record.Id,
		Title:       record.Title,
		Type:        collection.ResultType(),
		Module:      collection.Module(),
		Status:      record.Status,
		CreatedAt:   record.CreatedAt,
		Description: record.Description,
	}
}

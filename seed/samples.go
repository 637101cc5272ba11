package seed

import (
	"time"

	"github.com/poiesic/claimdesk/core"
)

type sample struct {
	title       string
	description string
	status      core.Status
	daysAgo     int
}

var sampleClaims = []sample{
	{"Steel Price Variation Claim", "Escalation of reinforcing steel prices after contract award", core.StatusSubmitted, 42},
	{"Extension of Time for Late Site Handover", "Site possession delayed by the contracting authority", core.StatusUnderReview, 37},
	{"Delay Damages Waiver Request", "Delay caused by late approval of shop drawings", core.StatusDraft, 30},
	{"Unforeseen Ground Conditions", "Rock encountered below the design foundation level", core.StatusApproved, 61},
	{"Currency Fluctuation Compensation", "Imported equipment priced in foreign currency", core.StatusRejected, 88},
	{"Suspension Costs Claim", "Standby costs during the authority's suspension order", core.StatusSubmitted, 14},
	{"Payment Delay Interest", "Interim payment certificates paid after the due date", core.StatusClosed, 120},
	{"Design Change Cost Claim", "Redesign of the car park structure requested by the client", core.StatusUnderReview, 9},
}

var sampleVariations = []sample{
	{"Additional Drainage Works", "Extra storm water network along the northern boundary", core.StatusUnderReview, 28},
	{"Steel Grade Substitution", "Replace grade 60 rebar with grade 75 in podium slabs", core.StatusApproved, 50},
	{"Scope Reduction for Phase 2", "Omission of landscaping works from the second phase", core.StatusSubmitted, 19},
	{"Quantity Increase for Earthworks", "Excavation quantities exceeding the bill by more than 20%", core.StatusDraft, 5},
	{"Change of Facade Material", "Aluminium cladding in place of natural stone", core.StatusRejected, 73},
	{"Additional Security Fencing", "Perimeter fencing requested after the risk assessment", core.StatusClosed, 101},
}

func (s sample) record(now time.Time) *core.Record {
	return &core.Record{
		Title:       s.title,
		Description: s.description,
		Status:      s.status,
		CreatedAt:   now.AddDate(0, 0, -s.daysAgo),
	}
}

func buildRecords(samples []sample) []*core.Record {
	now := time.Now().UTC().Truncate(time.Second)
	records := make([]*core.Record, len(samples))
	for i, s := range samples {
		records[i] = s.record(now)
	}
	return records
}

// SampleClaims returns fresh copies of the built-in sample claims.
func SampleClaims() []*core.Record {
	return buildRecords(sampleClaims)
}

// SampleVariations returns fresh copies of the built-in sample variations.
func SampleVariations() []*core.Record {
	return buildRecords(sampleVariations)
}

// Samples returns the built-in sample set as a File.
func Samples() *File {
	return &File{
		Claims:     toEntries(SampleClaims()),
		Variations: toEntries(SampleVariations()),
	}
}

func toEntries(records []*core.Record) []Entry {
	entries := make([]Entry, len(records))
	for i, record := range records {
		entries[i] = Entry{
			Title:       record.Title,
			Description: record.Description,
			Status:      record.Status,
			CreatedAt:   record.CreatedAt,
		}
	}
	return entries
}

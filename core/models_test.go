package core

import (
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short query", content: "steel"},
		{name: "empty string", content: ""},
		{name: "long content", content: "Claim for additional costs arising from the delayed handover of the site"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)
			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	if IDFromContent("steel") == IDFromContent("cement") {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestCollection_Labels(t *testing.T) {
	tests := []struct {
		collection Collection
		wantType   ResultType
		wantModule string
	}{
		{CollectionClaims, ResultTypeClaim, "Claims Management"},
		{CollectionVariations, ResultTypeVariation, "Variations Management"},
		{Collection("disputes"), "", ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.collection), func(t *testing.T) {
			if got := tt.collection.ResultType(); got != tt.wantType {
				t.Errorf("ResultType() = %q, want %q", got, tt.wantType)
			}
			if got := tt.collection.Module(); got != tt.wantModule {
				t.Errorf("Module() = %q, want %q", got, tt.wantModule)
			}
		})
	}
}

func TestNewSearchResult(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	record := &Record{
		Id:          7,
		Title:       "Steel Price Variation Claim",
		Description: "Escalation of rebar prices",
		Status:      StatusSubmitted,
		CreatedAt:   created,
	}

	result := NewSearchResult(CollectionClaims, record)

	if result.Id != 7 || result.Title != record.Title || result.Description != record.Description {
		t.Errorf("NewSearchResult() copied fields incorrectly: %+v", result)
	}
	if result.Type != ResultTypeClaim {
		t.Errorf("Type = %q, want %q", result.Type, ResultTypeClaim)
	}
	if result.Module != ModuleClaims {
		t.Errorf("Module = %q, want %q", result.Module, ModuleClaims)
	}
	if !result.CreatedAt.Equal(created) || result.Status != StatusSubmitted {
		t.Errorf("NewSearchResult() status/time mismatch: %+v", result)
	}
}

package importer

import (
	"strings"
	"testing"
)

func TestValidatePayloadAcceptsWellFormed(t *testing.T) {
	raw := []byte(`{
		"exportVersion": "1.0",
		"exportDate": "2026-01-15T10:00:00.000Z",
		"scope": "full",
		"data": {"assessments": [], "ratings": [], "history": [], "tags": [], "attachments": []},
		"metadata": {"totalAssessments": 0, "totalRatings": 0}
	}`)

	payload, errs := ValidatePayload(raw)
	if len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if payload.ExportVersion != "1.0" {
		t.Fatalf("expected version 1.0, got %q", payload.ExportVersion)
	}
}

func TestValidatePayloadRejectsGarbage(t *testing.T) {
	_, errs := ValidatePayload([]byte("not json at all"))
	if len(errs) == 0 {
		t.Fatal("expected validation errors for non-JSON input")
	}
}

func TestValidatePayloadRejectsUnsupportedVersion(t *testing.T) {
	raw := []byte(`{
		"exportVersion": "2.0",
		"exportDate": "2026-01-15T10:00:00.000Z",
		"data": {"assessments": [], "ratings": []}
	}`)

	_, errs := ValidatePayload(raw)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %v", errs)
	}
	if !strings.Contains(errs[0], "unsupported export version") {
		t.Fatalf("unexpected error: %q", errs[0])
	}
}

func TestValidatePayloadCollectsStructuralErrors(t *testing.T) {
	// Version absent, data.assessments is an object, ratings missing.
	raw := []byte(`{
		"exportDate": "2026-01-15T10:00:00.000Z",
		"data": {"assessments": {}}
	}`)

	_, errs := ValidatePayload(raw)
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidatePayloadRejectsNonStringDate(t *testing.T) {
	raw := []byte(`{
		"exportVersion": "1.0",
		"exportDate": 12345,
		"data": {"assessments": [], "ratings": []}
	}`)

	_, errs := ValidatePayload(raw)
	if len(errs) != 1 || !strings.Contains(errs[0], "exportDate") {
		t.Fatalf("expected exportDate error, got %v", errs)
	}
}

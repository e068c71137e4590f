package types

import "time"

// Export payload wire format, version "1.0". Field names are the
// camelCase keys the browser app reads and writes; dates travel as
// ISO-8601 strings.

const (
	ExportVersion = "1.0"

	ScopeFull   = "full"
	ScopeDomain = "domain"
	ScopeArea   = "area"
)

// SupportedExportVersions is the closed set of payload versions the
// import reconciler accepts.
var SupportedExportVersions = map[string]bool{
	ExportVersion: true,
}

type ExportPayload struct {
	ExportVersion string         `json:"exportVersion"`
	ExportDate    string         `json:"exportDate"`
	AppVersion    string         `json:"appVersion"`
	Scope         string         `json:"scope"`
	ScopeDetails  *ScopeDetails  `json:"scopeDetails,omitempty"`
	Data          ExportData     `json:"data"`
	Metadata      ExportMetadata `json:"metadata"`
}

type ScopeDetails struct {
	DomainID   string `json:"domainId,omitempty"`
	DomainName string `json:"domainName,omitempty"`
	AreaID     string `json:"areaId,omitempty"`
	AreaName   string `json:"areaName,omitempty"`
}

type ExportData struct {
	Assessments []AssessmentRecord `json:"assessments"`
	Ratings     []RatingRecord     `json:"ratings"`
	History     []HistoryRecord    `json:"history"`
	Tags        []TagRecord        `json:"tags"`
	Attachments []AttachmentRecord `json:"attachments"`
}

type ExportMetadata struct {
	TotalAssessments int      `json:"totalAssessments"`
	TotalRatings     int      `json:"totalRatings"`
	TotalHistory     int      `json:"totalHistory"`
	TotalAttachments int      `json:"totalAttachments"`
	Capabilities     []string `json:"capabilities"`
}

type AssessmentRecord struct {
	ID                 string   `json:"id"`
	CapabilityDomainID string   `json:"capabilityDomainId"`
	DomainName         string   `json:"domainName"`
	CapabilityAreaID   string   `json:"capabilityAreaId"`
	AreaName           string   `json:"areaName"`
	Status             string   `json:"status"`
	Tags               []string `json:"tags,omitempty"`
	OverallScore       *float64 `json:"overallScore,omitempty"`
	CreatedAt          string   `json:"createdAt"`
	UpdatedAt          string   `json:"updatedAt"`
	FinalizedAt        string   `json:"finalizedAt,omitempty"`
}

type RatingRecord struct {
	ID                     string          `json:"id"`
	CapabilityAssessmentID string          `json:"capabilityAssessmentId"`
	DimensionID            string          `json:"dimensionId"`
	SubDimensionID         string          `json:"subDimensionId,omitempty"`
	AspectID               string          `json:"aspectId"`
	CurrentLevel           int             `json:"currentLevel"`
	TargetLevel            *int            `json:"targetLevel,omitempty"`
	Notes                  string          `json:"notes,omitempty"`
	Barriers               string          `json:"barriers,omitempty"`
	Plans                  string          `json:"plans,omitempty"`
	ChecklistState         map[string]bool `json:"checklistState,omitempty"`
	CarriedForward         bool            `json:"carriedForward,omitempty"`
	AttachmentIDs          []string        `json:"attachmentIds,omitempty"`
	CreatedAt              string          `json:"createdAt"`
	UpdatedAt              string          `json:"updatedAt"`
}

type HistoryRecord struct {
	ID                     string             `json:"id"`
	CapabilityAssessmentID string             `json:"capabilityAssessmentId"`
	CapabilityAreaID       string             `json:"capabilityAreaId"`
	SnapshotDate           string             `json:"snapshotDate"`
	Tags                   []string           `json:"tags,omitempty"`
	OverallScore           float64            `json:"overallScore"`
	DimensionScores        map[string]float64 `json:"dimensionScores,omitempty"`
	Ratings                []RatingSnapshot   `json:"ratings,omitempty"`
}

type TagRecord struct {
	Name       string `json:"name"`
	UsageCount int    `json:"usageCount"`
	LastUsed   string `json:"lastUsed"`
}

type AttachmentRecord struct {
	ID                     string `json:"id"`
	CapabilityAssessmentID string `json:"capabilityAssessmentId"`
	OrbitRatingID          string `json:"orbitRatingId"`
	FileName               string `json:"fileName"`
	FileType               string `json:"fileType"`
	FileSize               int64  `json:"fileSize"`
	Description            string `json:"description,omitempty"`
	UploadedAt             string `json:"uploadedAt"`
}

// isoFormat matches the millisecond-precision timestamps the browser
// app writes (Date.toISOString()).
const isoFormat = "2006-01-02T15:04:05.000Z07:00"

func FormatISO(t time.Time) string {
	return t.UTC().Format(isoFormat)
}

// ParseISO accepts RFC 3339 timestamps with or without fractional
// seconds.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/orbitlabs/orbit-assess/internal/types"
)

// Format is the closed set of export encodings. JSON is the only
// round-trippable one; CSV and Markdown are one-way report formats
// the import side does not read.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format %q (json, csv, markdown)", s)
	}
}

// Encode renders the payload in the requested format.
func Encode(payload *types.ExportPayload, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(payload, "", "  ")
	case FormatCSV:
		return encodeCSV(payload)
	case FormatMarkdown:
		return encodeMarkdown(payload), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// encodeCSV flattens ratings across their assessments, one row per
// rating. Assessments without ratings still get a summary row so the
// sheet accounts for every exported area.
func encodeCSV(payload *types.ExportPayload) ([]byte, error) {
	byAssessment := map[string][]types.RatingRecord{}
	for _, r := range payload.Data.Ratings {
		byAssessment[r.CapabilityAssessmentID] = append(byAssessment[r.CapabilityAssessmentID], r)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"domainId", "areaId", "areaName", "status", "overallScore", "updatedAt",
		"dimensionId", "subDimensionId", "aspectId", "currentLevel", "targetLevel", "notes",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, a := range payload.Data.Assessments {
		base := []string{
			a.CapabilityDomainID, a.CapabilityAreaID, a.AreaName, a.Status,
			scoreCell(a.OverallScore), a.UpdatedAt,
		}
		ratings := byAssessment[a.ID]
		if len(ratings) == 0 {
			if err := w.Write(append(base, "", "", "", "", "", "")); err != nil {
				return nil, err
			}
			continue
		}
		for _, r := range ratings {
			row := append(append([]string{}, base...),
				r.DimensionID, r.SubDimensionID, r.AspectID,
				strconv.Itoa(r.CurrentLevel), levelCell(r.TargetLevel), r.Notes)
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeMarkdown(payload *types.ExportPayload) []byte {
	var b strings.Builder

	b.WriteString("# ORBIT Assessment Export\n\n")
	b.WriteString(fmt.Sprintf("**Exported:** %s\n\n", payload.ExportDate))
	b.WriteString(fmt.Sprintf("**Scope:** %s\n\n", payload.Scope))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Assessments | %d |\n", payload.Metadata.TotalAssessments))
	b.WriteString(fmt.Sprintf("| Ratings | %d |\n", payload.Metadata.TotalRatings))
	b.WriteString(fmt.Sprintf("| History entries | %d |\n", payload.Metadata.TotalHistory))
	b.WriteString(fmt.Sprintf("| Attachments | %d |\n", payload.Metadata.TotalAttachments))
	b.WriteString("\n")

	b.WriteString("## Capability Areas\n\n")
	if len(payload.Data.Assessments) == 0 {
		b.WriteString("*No assessments in scope.*\n")
		return []byte(b.String())
	}

	b.WriteString("| Area | Domain | Status | Score | Tags | Last Updated |\n")
	b.WriteString("|------|--------|--------|-------|------|--------------|\n")
	for _, a := range payload.Data.Assessments {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			a.AreaName, a.DomainName, a.Status,
			scoreCell(a.OverallScore), strings.Join(a.Tags, ", "), a.UpdatedAt))
	}
	b.WriteString("\n")

	return []byte(b.String())
}

func scoreCell(score *float64) string {
	if score == nil {
		return ""
	}
	return strconv.FormatFloat(*score, 'f', 1, 64)
}

func levelCell(level *int) string {
	if level == nil {
		return ""
	}
	return strconv.Itoa(*level)
}

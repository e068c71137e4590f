package importer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/orbitlabs/orbit-assess/internal/types"
)

// ValidatePayload is the all-or-nothing gate of an import: the
// version string must be in the supported set and the payload must
// carry the structural skeleton (exportVersion/exportDate strings,
// data.assessments/data.ratings arrays). Any failure rejects the
// whole payload before a single write happens. Per-record problems
// past this gate are handled record by record.
func ValidatePayload(raw []byte) (*types.ExportPayload, []string) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, []string{"payload is not a JSON object"}
	}

	var errs []string

	version, ok := stringField(probe, "exportVersion")
	switch {
	case !ok:
		errs = append(errs, "missing or non-string exportVersion")
	case !types.SupportedExportVersions[version]:
		errs = append(errs, fmt.Sprintf("unsupported export version %q", version))
	}

	if _, ok := stringField(probe, "exportDate"); !ok {
		errs = append(errs, "missing or non-string exportDate")
	}

	dataRaw, ok := probe["data"]
	if !ok {
		errs = append(errs, "missing data object")
	} else {
		var data map[string]json.RawMessage
		if err := json.Unmarshal(dataRaw, &data); err != nil {
			errs = append(errs, "data is not an object")
		} else {
			if !arrayField(data, "assessments") {
				errs = append(errs, "missing or non-array data.assessments")
			}
			if !arrayField(data, "ratings") {
				errs = append(errs, "missing or non-array data.ratings")
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	var payload types.ExportPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, []string{fmt.Sprintf("payload decode failed: %v", err)}
	}
	return &payload, nil
}

func stringField(m map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := m[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func arrayField(m map[string]json.RawMessage, key string) bool {
	raw, ok := m[key]
	if !ok {
		return false
	}
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

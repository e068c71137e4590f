package export

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"

	"github.com/orbitlabs/orbit-assess/internal/services"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

// WriteBundle writes the payload as a ZIP archive: data.json at the
// root, blobs under attachments/<domainId>/<areaId>/<fileName>. A
// blob missing from the store is skipped so the data export still
// succeeds; the sidecar metadata row travels regardless.
func WriteBundle(w io.Writer, payload *types.ExportPayload, blobs *services.BlobStore) error {
	zw := zip.NewWriter(w)

	dataFile, err := zw.Create("data.json")
	if err != nil {
		return fmt.Errorf("create data.json: %w", err)
	}
	enc := json.NewEncoder(dataFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode data.json: %w", err)
	}

	if blobs != nil {
		areaByAssessment := map[string][2]string{}
		for _, a := range payload.Data.Assessments {
			areaByAssessment[a.ID] = [2]string{a.CapabilityDomainID, a.CapabilityAreaID}
		}

		for _, att := range payload.Data.Attachments {
			loc, ok := areaByAssessment[att.CapabilityAssessmentID]
			if !ok {
				continue
			}
			data, err := blobs.Open(loc[0], loc[1], att.FileName)
			if err != nil {
				continue
			}
			f, err := zw.Create(fmt.Sprintf("attachments/%s/%s/%s", loc[0], loc[1], att.FileName))
			if err != nil {
				return fmt.Errorf("create attachment entry %s: %w", att.FileName, err)
			}
			if _, err := f.Write(data); err != nil {
				return fmt.Errorf("write attachment %s: %w", att.FileName, err)
			}
		}
	}

	return zw.Close()
}

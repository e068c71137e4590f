package importer

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbitlabs/orbit-assess/internal/types"
)

// ImportBundle reconciles a ZIP bundle: data.json at the archive root
// plus attachments/<domainId>/<areaId>/<fileName> blob entries. The
// data pass runs first; the attachment pass then resolves each blob
// against the (possibly remapped) current records. A blob that cannot
// be resolved is skipped with a log line, never an error: attachment
// loss is preferable to failing a merge that already happened.
func (r *Reconciler) ImportBundle(ctx context.Context, bundlePath string, opts Options) (*Result, error) {
	zr, err := zip.OpenReader(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer zr.Close()

	var dataFile *zip.File
	for _, f := range zr.File {
		if f.Name == "data.json" {
			dataFile = f
			break
		}
	}
	if dataFile == nil {
		return nil, fmt.Errorf("bundle has no data.json")
	}
	raw, err := readZipFile(dataFile)
	if err != nil {
		return nil, fmt.Errorf("read data.json: %w", err)
	}

	payload, errs := ValidatePayload(raw)
	if len(errs) > 0 {
		return &Result{Errors: errs}, nil
	}

	res, err := r.Import(ctx, raw, opts)
	if err != nil || !res.Success {
		return res, err
	}

	progress := opts.Progress
	if progress == nil {
		progress = func(int, string) {}
	}
	progress(95, "importing attachments")

	metaByFileName := map[string]types.AttachmentRecord{}
	for _, ar := range payload.Data.Attachments {
		metaByFileName[ar.FileName] = ar
	}
	ratingRecByID := map[string]types.RatingRecord{}
	for _, rr := range payload.Data.Ratings {
		ratingRecByID[rr.ID] = rr
	}

	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "attachments/") || f.FileInfo().IsDir() {
			continue
		}
		parts := strings.Split(f.Name, "/")
		if len(parts) != 4 {
			r.log.Warn("skipping attachment with unexpected path", "path", f.Name)
			continue
		}
		domainID, areaID, fileName := parts[1], parts[2], parts[3]

		meta, ok := metaByFileName[fileName]
		if !ok {
			r.log.Warn("skipping attachment without metadata entry", "file", fileName)
			continue
		}
		if err := r.importAttachment(ctx, f, meta, ratingRecByID, domainID, areaID, fileName); err != nil {
			r.log.Warn("skipping attachment", "file", fileName, "error", err.Error())
		}
	}

	progress(100, "bundle import complete")
	return res, nil
}

func (r *Reconciler) importAttachment(ctx context.Context, f *zip.File, meta types.AttachmentRecord, ratingRecByID map[string]types.RatingRecord, domainID, areaID, fileName string) error {
	if r.blobs == nil {
		return fmt.Errorf("no blob store configured")
	}

	// Resolve the current assessment through the area: the imported
	// assessment ids were remapped during the data pass.
	assessment, err := r.assessments.GetCurrentByAreaID(ctx, nil, areaID)
	if err != nil {
		return fmt.Errorf("no current assessment for area %q", areaID)
	}

	// Ratings also got new ids, so the original rating id resolves by
	// content equality: same dimension and aspect on the current
	// assessment.
	origRating, ok := ratingRecByID[meta.OrbitRatingID]
	if !ok {
		return fmt.Errorf("payload has no rating %q", meta.OrbitRatingID)
	}
	current, err := r.ratings.GetByAssessmentID(ctx, nil, assessment.ID)
	if err != nil {
		return err
	}
	var target *types.OrbitRating
	for _, row := range current {
		if row.DimensionID == origRating.DimensionID && row.AspectID == origRating.AspectID {
			target = row
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no matching rating for dimension %q aspect %q", origRating.DimensionID, origRating.AspectID)
	}

	data, err := readZipFile(f)
	if err != nil {
		return err
	}
	if _, err := r.blobs.Save(domainID, areaID, fileName, data); err != nil {
		return err
	}

	uploadedAt, err := types.ParseISO(meta.UploadedAt)
	if err != nil {
		uploadedAt = time.Now().UTC()
	}
	row := &types.Attachment{
		ID:                     uuid.New(),
		CapabilityAssessmentID: assessment.ID,
		OrbitRatingID:          target.ID,
		FileName:               fileName,
		FileType:               meta.FileType,
		FileSize:               int64(len(data)),
		Description:            meta.Description,
		UploadedAt:             uploadedAt,
		CreatedAt:              time.Now().UTC(),
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.attachments.Create(ctx, tx, []*types.Attachment{row}); err != nil {
			return err
		}
		target.SetAttachmentIDs(append(target.AttachmentIDList(), row.ID))
		return r.ratings.Update(ctx, tx, target)
	})
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Package export assembles versioned snapshots of the local store
// for transfer to another instance. The payload shape is the wire
// format the import reconciler understands; scopes narrow the
// exported set without changing that shape.
package export

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orbitlabs/orbit-assess/internal/data/repos"
	apperrors "github.com/orbitlabs/orbit-assess/internal/pkg/errors"
	"github.com/orbitlabs/orbit-assess/internal/platform/logger"
	"github.com/orbitlabs/orbit-assess/internal/types"
)

// AppVersion is stamped into payload metadata. Informational only,
// compatibility is decided by ExportVersion.
const AppVersion = "1.4.0"

// Scope selects which slice of the store an export covers.
type Scope struct {
	Kind     string // types.ScopeFull, ScopeDomain or ScopeArea
	DomainID string
	AreaID   string
}

type Builder struct {
	db          *gorm.DB
	log         *logger.Logger
	assessments repos.AssessmentRepo
	ratings     repos.RatingRepo
	history     repos.HistoryRepo
	tags        repos.TagRepo
	attachments repos.AttachmentRepo
}

func NewBuilder(
	db *gorm.DB,
	baseLog *logger.Logger,
	assessments repos.AssessmentRepo,
	ratings repos.RatingRepo,
	historyRepo repos.HistoryRepo,
	tags repos.TagRepo,
	attachments repos.AttachmentRepo,
) *Builder {
	return &Builder{
		db:          db,
		log:         baseLog.With("service", "ExportBuilder"),
		assessments: assessments,
		ratings:     ratings,
		history:     historyRepo,
		tags:        tags,
		attachments: attachments,
	}
}

// Build assembles the payload for the given scope. The snapshot is
// read phase by phase rather than inside one transaction; exports run
// against a quiescent local store, so phase-level consistency is
// enough. The context is checked between phases to make large
// exports cancelable.
func (b *Builder) Build(ctx context.Context, scope Scope) (*types.ExportPayload, error) {
	assessments, details, err := b.scopedAssessments(ctx, scope)
	if err != nil {
		return nil, err
	}

	payload := &types.ExportPayload{
		ExportVersion: types.ExportVersion,
		ExportDate:    types.FormatISO(nowUTC()),
		AppVersion:    AppVersion,
		Scope:         scope.Kind,
		ScopeDetails:  details,
	}

	capabilities := make([]string, 0, len(assessments))
	for _, a := range assessments {
		payload.Data.Assessments = append(payload.Data.Assessments, assessmentToRecord(a))
		capabilities = append(capabilities, a.CapabilityAreaID)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, a := range assessments {
		rows, err := b.ratings.GetByAssessmentID(ctx, nil, a.ID)
		if err != nil {
			return nil, fmt.Errorf("ratings for %s: %w", a.CapabilityAreaID, err)
		}
		for _, r := range rows {
			payload.Data.Ratings = append(payload.Data.Ratings, ratingToRecord(r))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, a := range assessments {
		entries, err := b.history.GetByAreaID(ctx, nil, a.CapabilityAreaID)
		if err != nil {
			return nil, fmt.Errorf("history for %s: %w", a.CapabilityAreaID, err)
		}
		for _, h := range entries {
			payload.Data.History = append(payload.Data.History, historyToRecord(h))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.collectTags(ctx, scope, assessments, payload); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, a := range assessments {
		rows, err := b.attachments.GetByAssessmentID(ctx, nil, a.ID)
		if err != nil {
			return nil, fmt.Errorf("attachments for %s: %w", a.CapabilityAreaID, err)
		}
		for _, att := range rows {
			payload.Data.Attachments = append(payload.Data.Attachments, attachmentToRecord(att))
		}
	}

	payload.Metadata = types.ExportMetadata{
		TotalAssessments: len(payload.Data.Assessments),
		TotalRatings:     len(payload.Data.Ratings),
		TotalHistory:     len(payload.Data.History),
		TotalAttachments: len(payload.Data.Attachments),
		Capabilities:     capabilities,
	}

	b.log.Info("export payload built",
		"scope", scope.Kind,
		"assessments", payload.Metadata.TotalAssessments,
		"ratings", payload.Metadata.TotalRatings)
	return payload, nil
}

func (b *Builder) scopedAssessments(ctx context.Context, scope Scope) ([]*types.CapabilityAssessment, *types.ScopeDetails, error) {
	switch scope.Kind {
	case types.ScopeFull:
		rows, err := b.assessments.ListAll(ctx, nil)
		return rows, nil, err

	case types.ScopeDomain:
		if scope.DomainID == "" {
			return nil, nil, fmt.Errorf("domain scope needs a domain id: %w", apperrors.ErrInvalidArgument)
		}
		rows, err := b.assessments.ListByDomainID(ctx, nil, scope.DomainID)
		if err != nil {
			return nil, nil, err
		}
		details := &types.ScopeDetails{DomainID: scope.DomainID}
		if len(rows) > 0 {
			details.DomainName = rows[0].DomainName
		}
		return rows, details, nil

	case types.ScopeArea:
		if scope.AreaID == "" {
			return nil, nil, fmt.Errorf("area scope needs an area id: %w", apperrors.ErrInvalidArgument)
		}
		current, err := b.assessments.GetCurrentByAreaID(ctx, nil, scope.AreaID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, &types.ScopeDetails{AreaID: scope.AreaID}, nil
		}
		if err != nil {
			return nil, nil, err
		}
		details := &types.ScopeDetails{
			DomainID:   current.CapabilityDomainID,
			DomainName: current.DomainName,
			AreaID:     current.CapabilityAreaID,
			AreaName:   current.AreaName,
		}
		return []*types.CapabilityAssessment{current}, details, nil

	default:
		return nil, nil, fmt.Errorf("unknown scope %q: %w", scope.Kind, apperrors.ErrInvalidArgument)
	}
}

// collectTags includes the registry rows an importer needs. Full
// exports carry the whole registry; scoped exports carry only the
// tags their assessments actually use.
func (b *Builder) collectTags(ctx context.Context, scope Scope, assessments []*types.CapabilityAssessment, payload *types.ExportPayload) error {
	if scope.Kind == types.ScopeFull {
		rows, err := b.tags.ListAll(ctx, nil)
		if err != nil {
			return err
		}
		for _, tag := range rows {
			payload.Data.Tags = append(payload.Data.Tags, tagToRecord(tag))
		}
		return nil
	}

	seen := map[string]bool{}
	for _, a := range assessments {
		for _, name := range a.TagList() {
			if seen[name] {
				continue
			}
			seen[name] = true
			tag, err := b.tags.GetByName(ctx, nil, name)
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			payload.Data.Tags = append(payload.Data.Tags, tagToRecord(tag))
		}
	}
	return nil
}

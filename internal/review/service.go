// Package review implements the staged-submission review workflow: loading
// filtered pages of staged artifacts and requesting status mutations on
// individual submissions.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aicell-lab/zooreview/internal/artifact"
)

// ErrStatusChanged is returned when a status edit finds the manifest status
// no longer matches what the reviewer was shown. The caller reloads instead
// of overwriting a racing review.
var ErrStatusChanged = errors.New("status changed remotely")

// ErrEmptyReason is returned when a rejection carries no usable reason.
var ErrEmptyReason = errors.New("rejection reason required")

// Action names one kind of mutation for in-flight bookkeeping.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionDelete  Action = "delete"
	ActionStatus  Action = "status"
)

// Key identifies one mutation attempt for single-flight suppression.
func Key(id string, action Action) string {
	return string(action) + ":" + id
}

// ValidReason reports whether a rejection reason survives trimming.
func ValidReason(reason string) bool {
	return strings.TrimSpace(reason) != ""
}

// Service runs the review workflow against one collection.
type Service struct {
	artifacts  *artifact.Client
	collection string
	perPage    int
	log        *zap.Logger
}

// NewService builds a review service scoped to collection. perPage is the
// fixed page size for every listing.
func NewService(client *artifact.Client, collection string, perPage int, log *zap.Logger) *Service {
	if perPage < 1 {
		perPage = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		artifacts:  client,
		collection: collection,
		perPage:    perPage,
		log:        log.Named("review"),
	}
}

func (s *Service) PerPage() int { return s.perPage }

// Result is one loaded page plus the pending-review badge count. Both totals
// come from the server; the badge is never derived from the visible page.
type Result struct {
	Items        []artifact.Artifact
	Total        int
	PendingTotal int
}

// LoadPage fetches one page of staged submissions. With pendingOnly the page
// total doubles as the pending total; otherwise a count query under the
// pending filter supplies it.
func (s *Service) LoadPage(ctx context.Context, page int, pendingOnly bool) (Result, error) {
	if page < 1 {
		page = 1
	}
	q := artifact.ListQuery{
		Parent:  s.collection,
		Version: artifact.VersionStaged,
		Limit:   s.perPage,
		Offset:  s.perPage * (page - 1),
	}
	if pendingOnly {
		q.Manifest = map[string]any{"status": artifact.StatusRequestReview}
	}

	p, err := s.artifacts.List(ctx, q)
	if err != nil {
		return Result{}, err
	}

	res := Result{Items: p.Items, Total: p.Total}
	if pendingOnly {
		res.PendingTotal = p.Total
		return res, nil
	}

	pending, err := s.PendingCount(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("pending count: %w", err)
	}
	res.PendingTotal = pending
	return res, nil
}

// PendingCount asks the server how many staged submissions await review.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	p, err := s.artifacts.List(ctx, artifact.ListQuery{
		Parent:   s.collection,
		Version:  artifact.VersionStaged,
		Manifest: map[string]any{"status": artifact.StatusRequestReview},
		Limit:    1,
	})
	if err != nil {
		return 0, err
	}
	return p.Total, nil
}

// Approve accepts a staged submission.
func (s *Service) Approve(ctx context.Context, id string) error {
	s.log.Info("approve", zap.String("artifact", id))
	return s.artifacts.Approve(ctx, id)
}

// Reject declines a staged submission. The reason must survive trimming.
func (s *Service) Reject(ctx context.Context, id, reason string) error {
	if !ValidReason(reason) {
		return ErrEmptyReason
	}
	s.log.Info("reject", zap.String("artifact", id))
	return s.artifacts.Reject(ctx, id, strings.TrimSpace(reason))
}

// DeleteStaged removes only the staged version of a submission, with its
// files, leaving published versions alone.
func (s *Service) DeleteStaged(ctx context.Context, id string) error {
	s.log.Info("delete staged", zap.String("artifact", id))
	return s.artifacts.Delete(ctx, id, artifact.DeleteOptions{
		Version:     artifact.VersionStaged,
		DeleteFiles: true,
		Recursive:   true,
	})
}

// SetStatus rewrites the manifest status of a staged submission. The write
// is conditional: the manifest is re-read first, and if its status no longer
// equals seen the edit is refused with ErrStatusChanged. Concurrent edits to
// other manifest fields are picked up by the fresh read and preserved.
func (s *Service) SetStatus(ctx context.Context, id, seen, next string) error {
	a, err := s.artifacts.Read(ctx, id, artifact.VersionStaged)
	if err != nil {
		return fmt.Errorf("read before edit: %w", err)
	}
	current := a.Manifest.Status()
	if current != seen {
		return fmt.Errorf("%w: now %q", ErrStatusChanged, current)
	}

	m := a.Manifest.Clone()
	m.SetStatus(next)
	s.log.Info("set status",
		zap.String("artifact", id),
		zap.String("from", seen),
		zap.String("to", next))
	return s.artifacts.Edit(ctx, id, m, artifact.VersionStaged)
}

// MarkInReview flags a pending submission as picked up by a reviewer.
func (s *Service) MarkInReview(ctx context.Context, id, seen string) error {
	return s.SetStatus(ctx, id, seen, artifact.StatusInReview)
}

// RequestRevision sends a submission back to its author.
func (s *Service) RequestRevision(ctx context.Context, id, seen string) error {
	return s.SetStatus(ctx, id, seen, artifact.StatusRevision)
}

package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/innerfold/parts-service/internal/markdown"
	"github.com/innerfold/parts-service/internal/registry/docstore"
)

// Syncer mirrors record mutations into the narrative documents. The record
// store and document store are updated sequentially with best-effort
// consistency, not atomically: a sync failure is logged and reported, and
// the record mutation stands either way.
type Syncer struct {
	docs docstore.DocumentStore
	now  func() time.Time
}

// NewSyncer builds a Syncer over the given document store.
func NewSyncer(docs docstore.DocumentStore) *Syncer {
	return &Syncer{docs: docs, now: time.Now}
}

// EnsurePartProfile seeds the part's profile document if it does not exist.
func (s *Syncer) EnsurePartProfile(ctx context.Context, userID, partID, name, category string) error {
	path := PartProfilePath(userID, partID)
	return s.ensure(ctx, path, func() string {
		return NewPartProfile(name, category, s.now())
	})
}

// EnsureRelationshipProfile seeds the relationship's profile document if it
// does not exist.
func (s *Syncer) EnsureRelationshipProfile(ctx context.Context, userID, relID, relType string) error {
	path := RelationshipProfilePath(userID, relID)
	return s.ensure(ctx, path, func() string {
		return NewRelationshipProfile(relType, s.now())
	})
}

// EnsureOverview seeds the user's overview document if it does not exist.
func (s *Syncer) EnsureOverview(ctx context.Context, userID string) error {
	return s.ensure(ctx, OverviewPath(userID), func() string {
		return NewOverview(s.now())
	})
}

func (s *Syncer) ensure(ctx context.Context, path string, seed func() string) error {
	exists, err := s.docs.Exists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.docs.Put(ctx, path, seed())
}

// AppendChangeLog appends a timestamped line to the document's change-log
// section and persists the result. Lint warnings are advisory: they are
// logged and never block the write.
func (s *Syncer) AppendChangeLog(ctx context.Context, path, summary string) error {
	doc, ok, err := s.docs.Get(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("document not found: %s", path)
	}

	line := fmt.Sprintf("- %s: %s", s.now().UTC().Format(time.RFC3339), summary)
	res, err := markdown.PatchSectionByAnchor(doc, ChangeLogAnchor, markdown.Change{Append: &line})
	if err != nil {
		return err
	}

	for _, warning := range markdown.Lint(res.Text).Warnings {
		log.Warn("Document lint warning", "path", path, "warning", warning)
	}
	if log.GetLevel() <= log.DebugLevel {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(doc),
			B:        difflib.SplitLines(res.Text),
			FromFile: res.BeforeHash,
			ToFile:   res.AfterHash,
			Context:  2,
		})
		log.Debug("Patched change log", "path", path, "diff", diff)
	}

	return s.docs.Put(ctx, path, res.Text)
}

// RecordPartChange is the best-effort narrative half of a part write: seed
// the profile if needed, then append the change-log line. Failures are
// logged, never propagated — the structured record is the source of truth.
func (s *Syncer) RecordPartChange(ctx context.Context, userID, partID, name, category, summary string) {
	if err := s.EnsurePartProfile(ctx, userID, partID, name, category); err != nil {
		log.Warn("Part profile seed failed", "user", userID, "part", partID, "err", err)
		return
	}
	if err := s.AppendChangeLog(ctx, PartProfilePath(userID, partID), summary); err != nil {
		log.Warn("Part profile sync failed", "user", userID, "part", partID, "err", err)
	}
}

// RecordRelationshipChange is the relationship counterpart of
// RecordPartChange.
func (s *Syncer) RecordRelationshipChange(ctx context.Context, userID, relID, relType, summary string) {
	if err := s.EnsureRelationshipProfile(ctx, userID, relID, relType); err != nil {
		log.Warn("Relationship profile seed failed", "user", userID, "relationship", relID, "err", err)
		return
	}
	if err := s.AppendChangeLog(ctx, RelationshipProfilePath(userID, relID), summary); err != nil {
		log.Warn("Relationship profile sync failed", "user", userID, "relationship", relID, "err", err)
	}
}

// Package audit implements the mutation log: every create/update against
// the record store is written together with before/after snapshots and
// enough human context to summarize and reverse it later. Rollback
// operations never return Go errors to callers; they report a Result value
// (spec'd behavior: rollback failure is an outcome, not an exception).
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/innerfold/parts-service/internal/model"
	"github.com/innerfold/parts-service/internal/registry/recordstore"
)

// Log is the mutation audit log. Construct it once at startup with the
// record store backend; there is no global instance.
type Log struct {
	store          recordstore.RecordStore
	matcher        Matcher
	candidateLimit int
	defaultWindow  time.Duration
	now            func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithMatcher swaps the rollback-description matching strategy.
func WithMatcher(m Matcher) Option {
	return func(l *Log) { l.matcher = m }
}

// WithCandidateLimit caps how many recent actions rollback-by-description
// considers.
func WithCandidateLimit(n int) Option {
	return func(l *Log) { l.candidateLimit = n }
}

// WithRollbackWindow sets the default lookback for rollback-by-description.
func WithRollbackWindow(d time.Duration) Option {
	return func(l *Log) { l.defaultWindow = d }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// New builds a mutation log over the given record store.
func New(store recordstore.RecordStore, opts ...Option) *Log {
	l := &Log{
		store:          store,
		matcher:        NewTokenOverlapMatcher(),
		candidateLimit: 20,
		defaultWindow:  30 * time.Minute,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Action is one queryable audit entry with its generated summary.
type Action struct {
	ID          uuid.UUID `json:"id"`
	Kind        string    `json:"actionKind"`
	TargetTable string    `json:"targetTable"`
	TargetID    string    `json:"targetId"`
	Summary     string    `json:"summary"`
	CanRollback bool      `json:"canRollback"`
	SessionID   *string   `json:"sessionId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Query filters RecentActions.
type Query struct {
	Limit     int
	Kinds     []model.ActionKind
	SessionID *string
	Within    time.Duration
}

// Result is the outcome of a rollback operation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoggedInsert writes the row, then appends an audit entry with a nil old
// state (rollback of a creation deletes the record). An audit append
// failure is logged and swallowed: the primary insert stands.
func (l *Log) LoggedInsert(ctx context.Context, table string, row recordstore.Row, userID string, kind model.ActionKind, meta map[string]any, sessionID *string) (recordstore.Row, error) {
	created, err := l.store.Insert(ctx, table, row)
	if err != nil {
		return nil, err
	}
	l.append(ctx, userID, kind, table, rowString(created, "id"), nil, created, meta, sessionID)
	return created, nil
}

// LoggedUpdate fetches the current row, applies the patch, and appends an
// audit entry carrying the pre-update snapshot.
func (l *Log) LoggedUpdate(ctx context.Context, table, id string, updates recordstore.Row, userID string, kind model.ActionKind, meta map[string]any, sessionID *string) (recordstore.Row, error) {
	old, err := l.store.Fetch(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, &recordstore.NotFoundError{Table: table, ID: id}
	}
	updated, err := l.store.Update(ctx, table, id, updates)
	if err != nil {
		return nil, err
	}
	l.append(ctx, userID, kind, table, id, old, updated, meta, sessionID)
	return updated, nil
}

// Fetch exposes primary-key reads for callers that need the current state
// before building update metadata.
func (l *Log) Fetch(ctx context.Context, table, id string) (recordstore.Row, error) {
	return l.store.Fetch(ctx, table, id)
}

func (l *Log) append(ctx context.Context, userID string, kind model.ActionKind, table, targetID string, oldState, newState recordstore.Row, meta map[string]any, sessionID *string) {
	entry := recordstore.Row{
		"id":           uuid.NewString(),
		"user_id":      userID,
		"action_kind":  string(kind),
		"target_table": table,
		"target_id":    targetID,
		"created_by":   model.ActorAgent,
		"created_at":   l.now().UTC(),
		"rolled_back":  false,
	}
	if s := jsonColumn(oldState); s != nil {
		entry["old_state"] = *s
	}
	if s := jsonColumn(newState); s != nil {
		entry["new_state"] = *s
	}
	if s := jsonColumn(meta); s != nil {
		entry["metadata"] = *s
	}
	if sessionID != nil {
		entry["session_id"] = *sessionID
	}
	if _, err := l.store.Insert(ctx, model.MutationLogTable, entry); err != nil {
		// Accepted inconsistency: the primary mutation is never unwound
		// because its own audit entry failed to write.
		log.Warn("Audit entry write failed; primary mutation stands",
			"table", table, "action", kind, "err", err)
	}
}

// RecentActions returns the caller's non-rolled-back entries newest first,
// each with a generated summary. Unlike the rollback operations this is a
// query: hard store failures propagate as errors.
func (l *Log) RecentActions(ctx context.Context, userID string, q Query) ([]Action, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	filter := recordstore.Row{
		"user_id":     userID,
		"rolled_back": false,
	}
	if q.SessionID != nil {
		filter["session_id"] = *q.SessionID
	}
	// A single kind is an equality predicate the store can apply itself.
	if len(q.Kinds) == 1 {
		filter["action_kind"] = string(q.Kinds[0])
	}

	kinds := map[string]bool{}
	if len(q.Kinds) > 1 {
		for _, k := range q.Kinds {
			kinds[string(k)] = true
		}
	}
	var cutoff time.Time
	if q.Within > 0 {
		cutoff = l.now().Add(-q.Within)
	}

	// Kind-set and window predicates run in memory; fetch progressively
	// larger batches until the limit is satisfied or the log is exhausted.
	fetch := limit
	for {
		rows, err := l.store.List(ctx, model.MutationLogTable, filter, fetch)
		if err != nil {
			return nil, err
		}

		out := []Action{}
		for _, row := range rows {
			kind := rowString(row, "action_kind")
			if len(kinds) > 0 && !kinds[kind] {
				continue
			}
			created := rowTime(row, "created_at")
			if !cutoff.IsZero() && created.Before(cutoff) {
				continue
			}
			out = append(out, Action{
				ID:          rowUUID(row, "id"),
				Kind:        kind,
				TargetTable: rowString(row, "target_table"),
				TargetID:    rowString(row, "target_id"),
				Summary:     Summarize(kind, rowJSONMap(row, "metadata")),
				CanRollback: !rowBool(row, "rolled_back"),
				SessionID:   rowStringPtr(row, "session_id"),
				CreatedAt:   created,
			})
			if len(out) == limit {
				return out, nil
			}
		}
		if len(rows) < fetch {
			return out, nil
		}
		fetch *= 2
	}
}

// RollbackAction reverses one logged mutation owned by userID: a creation
// is deleted, an update is overwritten with its old snapshot, and the entry
// flips to rolled back (terminal). All failures come back as Result values.
// An action belonging to another user reads as not found, so action IDs
// leak nothing across users.
func (l *Log) RollbackAction(ctx context.Context, userID string, actionID uuid.UUID, reason string) Result {
	row, err := l.store.Fetch(ctx, model.MutationLogTable, actionID.String())
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Failed to load action: %v", err)}
	}
	if row == nil || rowString(row, "user_id") != userID {
		return Result{Success: false, Message: "Action not found"}
	}
	if rowBool(row, "rolled_back") {
		return Result{Success: false, Message: "Action already rolled back"}
	}

	table := rowString(row, "target_table")
	targetID := rowString(row, "target_id")
	oldState := rowJSONMap(row, "old_state")

	if oldState != nil {
		if _, err := l.store.Update(ctx, table, targetID, oldState); err != nil {
			var nf *recordstore.NotFoundError
			if errors.As(err, &nf) {
				// The record disappeared after the logged update;
				// restoring the snapshot recreates it.
				if _, err := l.store.Insert(ctx, table, oldState); err != nil {
					return Result{Success: false, Message: fmt.Sprintf("Failed to restore %s: %v", table, err)}
				}
			} else {
				return Result{Success: false, Message: fmt.Sprintf("Failed to restore %s: %v", table, err)}
			}
		}
	} else {
		if err := l.store.Delete(ctx, table, targetID); err != nil {
			return Result{Success: false, Message: fmt.Sprintf("Failed to delete created %s: %v", table, err)}
		}
	}

	patch := recordstore.Row{
		"rolled_back":     true,
		"rollback_reason": reason,
		"rolled_back_at":  l.now().UTC(),
	}
	if _, err := l.store.Update(ctx, model.MutationLogTable, actionID.String(), patch); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Restored the record but failed to mark the action rolled back: %v", err)}
	}

	return Result{
		Success: true,
		Message: "Rolled back: " + Summarize(rowString(row, "action_kind"), rowJSONMap(row, "metadata")),
	}
}

// RollbackByDescription matches a natural-language description against the
// summaries of recent actions and rolls back the best match.
func (l *Log) RollbackByDescription(ctx context.Context, userID, description, reason string, within time.Duration) Result {
	if within <= 0 {
		within = l.defaultWindow
	}
	actions, err := l.RecentActions(ctx, userID, Query{Limit: l.candidateLimit, Within: within})
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Failed to load recent actions: %v", err)}
	}

	candidates := make([]Candidate, 0, len(actions))
	for _, a := range actions {
		candidates = append(candidates, Candidate{ID: a.ID, Summary: a.Summary})
	}
	match := l.matcher.FindBestMatch(description, candidates)
	if match == nil {
		return Result{Success: false, Message: "No recent action found matching: " + description}
	}
	return l.RollbackAction(ctx, userID, match.ID, reason)
}

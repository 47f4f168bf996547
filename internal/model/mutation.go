package model

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind tags a logged mutation with what kind of change it was.
// Summaries and rollback filtering key off this value.
type ActionKind string

const (
	ActionCreatePart         ActionKind = "create_part"
	ActionUpdatePart         ActionKind = "update_part"
	ActionConfidenceChange   ActionKind = "confidence_change"
	ActionCategoryChange     ActionKind = "category_change"
	ActionCreateRelationship ActionKind = "create_relationship"
	ActionUpdateRelationship ActionKind = "update_relationship"
	ActionCreateProposal     ActionKind = "create_proposal"
)

// ActorAgent is the createdBy tag for mutations performed by the
// conversational agent on a user's behalf.
const ActorAgent = "agent"

// MutationLogTable is the record-store table holding MutationRecord rows.
const MutationLogTable = "agent_actions"

// MutationRecord is one entry in the mutation audit log. Each row captures a
// single create/update with enough state to reverse it. Rows are never
// physically deleted; RolledBack transitions false -> true exactly once and
// is terminal.
type MutationRecord struct {
	// ID is the primary key (UUID).
	ID uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`

	// UserID is the owning user.
	UserID string `json:"userId" gorm:"not null;index;column:user_id"`

	// ActionKind tags what kind of change this was.
	ActionKind string `json:"actionKind" gorm:"not null;column:action_kind"`

	// TargetTable and TargetID identify the mutated record.
	TargetTable string `json:"targetTable" gorm:"not null;column:target_table"`
	TargetID    string `json:"targetId" gorm:"not null;column:target_id"`

	// OldState is the JSON snapshot before the mutation. NULL means the
	// mutation was a creation, so rollback deletes the record.
	OldState *string `json:"-" gorm:"column:old_state"`

	// NewState is the JSON snapshot after the mutation.
	NewState *string `json:"-" gorm:"column:new_state"`

	// Metadata is a JSON object with human context for summaries: display
	// name, change description, numeric deltas. Shape varies by kind.
	Metadata *string `json:"-" gorm:"column:metadata"`

	// SessionID optionally groups mutations made in one conversation.
	SessionID *string `json:"sessionId,omitempty" gorm:"column:session_id"`

	// CreatedBy is the actor tag, normally ActorAgent.
	CreatedBy string `json:"createdBy" gorm:"not null;column:created_by"`

	// CreatedAt is when the mutation was logged.
	CreatedAt time.Time `json:"createdAt" gorm:"not null;index;column:created_at"`

	// RolledBack marks the entry terminal. Never reset to false.
	RolledBack bool `json:"rolledBack" gorm:"not null;default:false;column:rolled_back"`

	// RollbackReason records why the mutation was reversed.
	RollbackReason *string `json:"rollbackReason,omitempty" gorm:"column:rollback_reason"`

	// RolledBackAt is when the rollback happened.
	RolledBackAt *time.Time `json:"rolledBackAt,omitempty" gorm:"column:rolled_back_at"`
}

// TableName implements gorm.Tabler.
func (MutationRecord) TableName() string { return MutationLogTable }

// Package profile keeps the narrative markdown documents in sync with the
// structured part/relationship records. Documents are addressed by the
// canonical paths below and edited only through anchored section patches,
// never free-form rewrites.
package profile

import "fmt"

// ChangeLogAnchor is the anchor of the change-log section every profile
// document carries.
const ChangeLogAnchor = "change_log v1"

// PartProfilePath returns the document path for a part profile.
func PartProfilePath(userID, partID string) string {
	return fmt.Sprintf("users/%s/parts/%s/profile.md", userID, partID)
}

// RelationshipProfilePath returns the document path for a relationship
// profile.
func RelationshipProfilePath(userID, relID string) string {
	return fmt.Sprintf("users/%s/relationships/%s/profile.md", userID, relID)
}

// OverviewPath returns the document path for a user's system overview.
func OverviewPath(userID string) string {
	return fmt.Sprintf("users/%s/overview.md", userID)
}

// UserPrefix returns the path prefix holding all of a user's documents.
func UserPrefix(userID string) string {
	return fmt.Sprintf("users/%s/", userID)
}

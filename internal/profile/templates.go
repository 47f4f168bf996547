package profile

import (
	"fmt"
	"time"

	"github.com/innerfold/parts-service/internal/canon"
)

// Seed templates for new profile documents. Every section carries an anchor
// marker so it stays addressable by the section patcher; the change log is
// seeded with a creation line.

// NewPartProfile returns the canonical seed document for a part.
func NewPartProfile(name, category string, created time.Time) string {
	doc := fmt.Sprintf(`# Part: %s

## Identity
<!-- @anchor: identity v1 -->
Name: %s
Category: %s

## Role
<!-- @anchor: role v1 -->
Not yet described.

## Evidence
<!-- @anchor: evidence v1 -->
No evidence recorded yet.

## Change Log
<!-- @anchor: %s -->
- %s: profile created
`, name, name, category, ChangeLogAnchor, created.UTC().Format(time.RFC3339))
	return canon.Canonicalize(doc)
}

// NewRelationshipProfile returns the canonical seed document for a
// relationship between two parts.
func NewRelationshipProfile(relType string, created time.Time) string {
	doc := fmt.Sprintf(`# Relationship

## Dynamic
<!-- @anchor: dynamic v1 -->
Type: %s

## Evidence
<!-- @anchor: evidence v1 -->
No evidence recorded yet.

## Change Log
<!-- @anchor: %s -->
- %s: profile created
`, relType, ChangeLogAnchor, created.UTC().Format(time.RFC3339))
	return canon.Canonicalize(doc)
}

// NewOverview returns the canonical seed document for a user's system
// overview.
func NewOverview(created time.Time) string {
	doc := fmt.Sprintf(`# System Overview

## Parts
<!-- @anchor: parts v1 -->
No parts identified yet.

## Relationships
<!-- @anchor: relationships v1 -->
No relationships identified yet.

## Change Log
<!-- @anchor: %s -->
- %s: overview created
`, ChangeLogAnchor, created.UTC().Format(time.RFC3339))
	return canon.Canonicalize(doc)
}

package audit

import (
	"fmt"
	"math"
	"strconv"

	"github.com/innerfold/parts-service/internal/model"
)

// Summarize maps an action kind and its metadata to a human-readable
// sentence. It runs over arbitrary historical metadata shapes, so it is
// total: missing or mistyped fields degrade the wording, never panic.
func Summarize(kind string, meta map[string]any) string {
	name := metaString(meta, "partName")
	desc := metaString(meta, "changeDescription")

	switch model.ActionKind(kind) {
	case model.ActionCreatePart:
		if name == "" {
			return "Created a part"
		}
		return fmt.Sprintf("Created part %q", name)

	case model.ActionUpdatePart:
		target := "part"
		if name != "" {
			target = fmt.Sprintf("part %q", name)
		}
		if desc != "" {
			return fmt.Sprintf("Updated %s: %s", target, desc)
		}
		return "Updated " + target

	case model.ActionConfidenceChange:
		delta, ok := metaFloat(meta, "confidenceDelta")
		if !ok {
			oldV, okOld := metaFloat(meta, "oldConfidence")
			newV, okNew := metaFloat(meta, "newConfidence")
			if okOld && okNew {
				delta, ok = newV-oldV, true
			}
		}
		subject := "part"
		if name != "" {
			subject = fmt.Sprintf("%q", name)
		}
		if !ok {
			return fmt.Sprintf("Adjusted confidence for %s", subject)
		}
		verb := "Increased"
		if delta < 0 {
			verb = "Decreased"
		}
		return fmt.Sprintf("%s confidence for %s by %s", verb, subject, formatDelta(math.Abs(delta)))

	case model.ActionCategoryChange:
		oldCat := metaStringOr(meta, "oldCategory", "unknown")
		newCat := metaStringOr(meta, "newCategory", "unknown")
		if name == "" {
			return fmt.Sprintf("Changed category from %s to %s", oldCat, newCat)
		}
		return fmt.Sprintf("Changed category for %q from %s to %s", name, oldCat, newCat)

	case model.ActionCreateRelationship:
		if t := metaString(meta, "relationshipType"); t != "" {
			return fmt.Sprintf("Created %s relationship", t)
		}
		if desc != "" {
			return "Created relationship: " + desc
		}
		return "Created a relationship"

	case model.ActionUpdateRelationship:
		if desc != "" {
			return "Updated relationship: " + desc
		}
		return "Updated a relationship"

	case model.ActionCreateProposal:
		if id := metaString(meta, "proposalId"); id != "" {
			return fmt.Sprintf("Created proposal %s", id)
		}
		return "Created a proposal"
	}

	if desc == "" {
		desc = "Unknown change"
	}
	return fmt.Sprintf("%s: %s", kind, desc)
}

func formatDelta(d float64) string {
	// Rounded so a computed new-old delta prints as 0.1, not 0.099999...
	return strconv.FormatFloat(math.Round(d*1e4)/1e4, 'g', -1, 64)
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	s, _ := meta[key].(string)
	return s
}

func metaStringOr(meta map[string]any, key, fallback string) string {
	if s := metaString(meta, key); s != "" {
		return s
	}
	return fallback
}

func metaFloat(meta map[string]any, key string) (float64, bool) {
	if meta == nil {
		return 0, false
	}
	switch v := meta[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

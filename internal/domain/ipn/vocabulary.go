package ipn

import (
	"strings"

	"paypalplus/internal/domain/order"
)

// Vocabulary maps one provider status vocabulary onto canonical order
// statuses. Two historical integrations report the same states with
// different raw strings; selecting the vocabulary at construction time keeps
// the comparison logic in one place and leaves a single seam for adding a
// third variant.
type Vocabulary int

const (
	// VocabularyIPN is the legacy IPN wording (completed, pending, ...).
	VocabularyIPN Vocabulary = iota
	// VocabularyWebhook is the REST webhook wording (approved, COMPLETED, ...).
	VocabularyWebhook
)

// webhookAliases lists raw webhook statuses that differ from the canonical
// name. Unlisted statuses match by name in both vocabularies.
var webhookAliases = map[string]order.Status{
	"approved": order.StatusCompleted,
}

// StatusIs reports whether a raw provider status denotes the given canonical
// status. Comparison is case-insensitive.
func (v Vocabulary) StatusIs(raw string, canonical order.Status) bool {
	normalized := strings.ToLower(raw)

	if normalized == string(canonical) {
		return true
	}
	if v == VocabularyWebhook {
		if mapped, ok := webhookAliases[normalized]; ok {
			return mapped == canonical
		}
	}
	return false
}

// Package sanitize scrubs free-text fields of a validated group document.
//
// Every string a member can type passes through here before storage: HTML and
// script content is stripped, entities are decoded back to plain text, and
// lengths are clamped to the same bounds the validator enforces. The output is
// rebuilt through the typed model, so any keys outside the canonical shape are
// dropped rather than stored — documents never carry attacker-chosen keys.
//
// Sanitization never fails and is idempotent: running it on already-sanitized
// input returns an equal document.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/kf5fay/group-gifting/internal/models"
	"github.com/kf5fay/group-gifting/internal/validate"
)

// policy strips all HTML. StrictPolicy escapes what it keeps, so the result is
// unescaped afterwards to store plain text; rendering layers re-escape.
var policy = bluemonday.StrictPolicy()

// Text strips HTML from a single free-text value and clamps it to maxLen
// runes.
func Text(s string, maxLen int) string {
	// Strip and decode to a fixpoint. A single pass is not enough:
	// entity-encoded markup ("&lt;b&gt;") decodes into live markup that the
	// next sanitization would strip, so stopping early would leave a value
	// that changes again on the re-sanitization every overwrite performs.
	// Each non-fixpoint pass removes markup or decodes an entity layer, both
	// of which shorten the string, so the loop terminates.
	for {
		next := html.UnescapeString(policy.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxLen {
		// Truncation can expose trailing whitespace; trim again so a second
		// pass is a no-op.
		s = strings.TrimSpace(string(r[:maxLen]))
	}
	return s
}

// Document returns a sanitized copy of a group document. The input is not
// modified. Claim lists are kept but their entries are scrubbed like any other
// free text; nil item slices and claim sets come back as empty, never nil.
func Document(g *models.Group) *models.Group {
	out := &models.Group{
		GroupID:   g.GroupID,
		GroupName: Text(g.GroupName, validate.MaxGroupNameLen),
		EventType: Text(g.EventType, validate.MaxEventTypeLen),
		EventDate: strings.TrimSpace(g.EventDate),
		CreatedBy: Text(g.CreatedBy, validate.MaxMemberNameLen),
		Users:     make(map[string]models.Wishlist, len(g.Users)),
	}

	for name, list := range g.Users {
		cleanName := Text(name, validate.MaxMemberNameLen)
		if cleanName == "" {
			continue
		}
		items := make([]models.Item, 0, len(list.Items))
		for _, item := range list.Items {
			items = append(items, sanitizeItem(item))
		}
		out.Users[cleanName] = models.Wishlist{Items: items}
	}

	return out
}

func sanitizeItem(item models.Item) models.Item {
	return models.Item{
		Description: Text(item.Description, validate.MaxDescriptionLen),
		Priority:    strings.ToLower(strings.TrimSpace(item.Priority)),
		Price:       Text(item.Price, validate.MaxPriceLen),
		Notes:       Text(item.Notes, validate.MaxNotesLen),
		ClaimedBy:   sanitizeNames(item.ClaimedBy),
		Purchased:   item.Purchased,
		SplitWith:   sanitizeNames(item.SplitWith),
	}
}

func sanitizeNames(names models.NameList) models.NameList {
	out := make(models.NameList, 0, len(names))
	for _, name := range names {
		clean := Text(name, validate.MaxMemberNameLen)
		if clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// Package validate checks candidate group documents before they reach storage.
//
// Input is untyped JSON (map[string]any): the whole point of this boundary is
// to report shape problems as data instead of failing a typed decode. A wrong
// type or a missing field is a reported problem, never a panic or an error
// return. Legacy field-name aliases are normalized here, once; deeper layers
// only ever see the canonical shape.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Document limits. These bound the single-document-per-group model so one
// group cannot grow without limit.
const (
	MaxGroupNameLen   = 100
	MaxMemberNameLen  = 100
	MaxUsers          = 50
	MaxItemsPerUser   = 100
	MaxDescriptionLen = 500
	MaxNotesLen       = 1000
	MaxPriceLen       = 100
	MaxEventTypeLen   = 100
	MaxGroupIDLen     = 100
	MaxDocumentBytes  = 500 * 1024
)

const eventDateLayout = "2006-01-02"

var groupIDRx = regexp.MustCompile(`^[a-zA-Z0-9_\-]{1,100}$`)

// priorities are the accepted item priority labels.
var priorities = map[string]bool{"high": true, "medium": true, "low": true}

// Field-name aliases accepted from older clients and older stored documents.
// Normalization happens exactly once, at this boundary.
var (
	groupAliases = map[string]string{
		"people":  "users",
		"holiday": "eventType",
	}
	itemAliases = map[string]string{
		"item":    "description",
		"name":    "description",
		"details": "notes",
	}
)

// GroupID checks that a group identifier is usable as a storage key and URL
// segment.
func GroupID(id string) error {
	if id == "" {
		return fmt.Errorf("group id required")
	}
	if !groupIDRx.MatchString(id) {
		return fmt.Errorf("group id must be 1-%d letters, digits, '-' or '_'", MaxGroupIDLen)
	}
	return nil
}

// Normalize rewrites legacy field-name aliases in a raw document to their
// canonical names, returning a new map. The input is never mutated. Canonical
// keys win when both an alias and its canonical name are present.
func Normalize(raw map[string]any) map[string]any {
	doc := renameKeys(raw, groupAliases)

	users, ok := doc["users"].(map[string]any)
	if !ok {
		return doc
	}
	normUsers := make(map[string]any, len(users))
	for name, wishlist := range users {
		wl, ok := wishlist.(map[string]any)
		if !ok {
			normUsers[name] = wishlist
			continue
		}
		wl = renameKeys(wl, map[string]string{"wishlist": "items"})
		items, ok := wl["items"].([]any)
		if ok {
			normItems := make([]any, len(items))
			for i, item := range items {
				if m, ok := item.(map[string]any); ok {
					normItems[i] = renameKeys(m, itemAliases)
				} else {
					normItems[i] = item
				}
			}
			wl["items"] = normItems
		}
		normUsers[name] = wl
	}
	doc["users"] = normUsers
	return doc
}

func renameKeys(m map[string]any, aliases map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	for alias, canonical := range aliases {
		v, ok := out[alias]
		if !ok {
			continue
		}
		if _, exists := out[canonical]; !exists {
			out[canonical] = v
		}
		delete(out, alias)
	}
	return out
}

// Document checks a normalized raw document against the shape and size rules.
// It returns a list of human-readable problems, empty when the document is
// valid. The input is never mutated.
func Document(doc map[string]any) []string {
	var problems []string

	problems = append(problems, checkString(doc, "groupName", true, MaxGroupNameLen)...)
	problems = append(problems, checkString(doc, "eventType", false, MaxEventTypeLen)...)
	problems = append(problems, checkString(doc, "createdBy", false, MaxMemberNameLen)...)

	if v, ok := doc["eventDate"]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			problems = append(problems, "eventDate must be a string")
		} else if s != "" {
			if _, err := time.Parse(eventDateLayout, s); err != nil {
				problems = append(problems, fmt.Sprintf("eventDate %q is not a valid date (want YYYY-MM-DD)", s))
			}
		}
	}

	usersVal, ok := doc["users"]
	if !ok || usersVal == nil {
		problems = append(problems, "users is required")
		return problems
	}
	users, ok := usersVal.(map[string]any)
	if !ok {
		// A JSON array decodes to []any; catching it here is what keeps the
		// "users is a mapping, not a sequence" rule honest.
		problems = append(problems, "users must be an object mapping member names to wishlists")
		return problems
	}
	if len(users) > MaxUsers {
		problems = append(problems, fmt.Sprintf("too many members: %d (max %d)", len(users), MaxUsers))
	}

	for name, wishlist := range users {
		if name == "" {
			problems = append(problems, "member names must not be empty")
			continue
		}
		if len([]rune(name)) > MaxMemberNameLen {
			problems = append(problems, fmt.Sprintf("member name %q too long (max %d chars)", truncateForMessage(name), MaxMemberNameLen))
		}
		problems = append(problems, checkWishlist(name, wishlist)...)
	}

	return problems
}

func checkWishlist(member string, v any) []string {
	wl, ok := v.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("wishlist for %q must be an object", member)}
	}

	itemsVal, ok := wl["items"]
	if !ok || itemsVal == nil {
		// An empty wishlist may omit items entirely.
		return nil
	}
	items, ok := itemsVal.([]any)
	if !ok {
		return []string{fmt.Sprintf("items for %q must be an array", member)}
	}

	var problems []string
	if len(items) > MaxItemsPerUser {
		problems = append(problems, fmt.Sprintf("too many items for %q: %d (max %d)", member, len(items), MaxItemsPerUser))
	}
	for i, item := range items {
		problems = append(problems, checkItem(member, i, item)...)
	}
	return problems
}

func checkItem(member string, idx int, v any) []string {
	item, ok := v.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("item %d for %q must be an object", idx, member)}
	}

	var problems []string
	where := fmt.Sprintf("item %d for %q", idx, member)

	desc, ok := item["description"].(string)
	if !ok || desc == "" {
		problems = append(problems, where+": description is required")
	} else if len([]rune(desc)) > MaxDescriptionLen {
		problems = append(problems, fmt.Sprintf("%s: description too long (max %d chars)", where, MaxDescriptionLen))
	}

	if v, ok := item["priority"]; ok && v != nil {
		s, isStr := v.(string)
		if !isStr {
			problems = append(problems, where+": priority must be a string")
		} else if s != "" && !priorities[strings.ToLower(s)] {
			problems = append(problems, fmt.Sprintf("%s: priority %q must be high, medium or low", where, s))
		}
	}

	problems = append(problems, checkString(item, "price", false, MaxPriceLen).withPrefix(where)...)
	problems = append(problems, checkString(item, "notes", false, MaxNotesLen).withPrefix(where)...)

	if v, ok := item["purchased"]; ok && v != nil {
		if _, isBool := v.(bool); !isBool {
			problems = append(problems, where+": purchased must be a boolean")
		}
	}

	// claimedBy/splitWith as a bare string is a historical document shape
	// that broke gift-splitting; it is rejected outright on write.
	problems = append(problems, checkNameList(where, item, "claimedBy")...)
	problems = append(problems, checkNameList(where, item, "splitWith")...)

	return problems
}

func checkNameList(where string, m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return []string{fmt.Sprintf("%s: %s must be an array of names, not a single value", where, key)}
	}
	var problems []string
	for _, entry := range list {
		name, ok := entry.(string)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: %s entries must be strings", where, key))
			continue
		}
		if len([]rune(name)) > MaxMemberNameLen {
			problems = append(problems, fmt.Sprintf("%s: %s entry too long (max %d chars)", where, key, MaxMemberNameLen))
		}
	}
	return problems
}

type problemList []string

func (p problemList) withPrefix(prefix string) problemList {
	out := make(problemList, len(p))
	for i, msg := range p {
		out[i] = prefix + ": " + msg
	}
	return out
}

func checkString(m map[string]any, key string, required bool, maxLen int) problemList {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return problemList{key + " is required"}
		}
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return problemList{key + " must be a string"}
	}
	if required && s == "" {
		return problemList{key + " is required"}
	}
	if len([]rune(s)) > maxLen {
		return problemList{fmt.Sprintf("%s too long (max %d chars)", key, maxLen)}
	}
	return nil
}

func truncateForMessage(s string) string {
	r := []rune(s)
	if len(r) <= 20 {
		return s
	}
	return string(r[:20]) + "..."
}

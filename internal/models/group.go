package models

import (
	"encoding/json"
	"fmt"
)

// Group is one gift-exchange event. It is stored as a single JSON document
// keyed by GroupID and always overwritten as a whole.
type Group struct {
	// GroupID is the opaque identifier chosen at creation. It doubles as the
	// storage key and the shareable URL segment; it never changes.
	GroupID string `json:"groupId"`

	// GroupName is the display name of the exchange (e.g. "Smith Family").
	GroupName string `json:"groupName"`

	// EventType is a free-form or well-known label selecting a cosmetic theme
	// (e.g. "christmas", "birthday").
	EventType string `json:"eventType,omitempty"`

	// EventDate is the optional date of the exchange, formatted YYYY-MM-DD.
	EventDate string `json:"eventDate,omitempty"`

	// CreatedBy is the display name of the member who created the group.
	// It grants creator-only actions (reset) but is a client-supplied string
	// trusted at face value; nothing verifies it.
	CreatedBy string `json:"createdBy,omitempty"`

	// Users maps member display name (case-sensitive, unique within the
	// group) to that member's wishlist.
	Users map[string]Wishlist `json:"users"`
}

// Wishlist is one member's ordered list of wanted items.
type Wishlist struct {
	Items []Item `json:"items"`
}

// Item is a single wishlist entry.
type Item struct {
	// Description names the desired gift. Required.
	Description string `json:"description"`

	// Priority is "high", "medium" or "low"; empty on documents that predate
	// the field.
	Priority string `json:"priority,omitempty"`

	// Price is a free-text price-range label (e.g. "$20-30").
	Price string `json:"price,omitempty"`

	// Notes is free text; URLs in it are rendered as links by the front end.
	Notes string `json:"notes,omitempty"`

	// ClaimedBy lists the members who claimed this item. More than one name
	// means the gift is being split. Empty means unclaimed.
	ClaimedBy NameList `json:"claimedBy"`

	// Purchased records whether a claimant marked the item bought.
	Purchased bool `json:"purchased"`

	// SplitWith lists the members sharing the claim.
	SplitWith NameList `json:"splitWith"`
}

// NameList is a set of member names. It always marshals as a JSON array, and
// unmarshals from either an array or a legacy bare string: old documents
// stored a single claimant name as a scalar, and stored rows with that shape
// still exist.
type NameList []string

// MarshalJSON emits an empty array rather than null for a nil list.
func (n NameList) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(n))
}

// UnmarshalJSON accepts an array of strings or a single bare string.
func (n *NameList) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		*n = names
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*n = nil
		} else {
			*n = NameList{single}
		}
		return nil
	}
	return fmt.Errorf("name list must be an array of strings")
}

// Contains reports whether name is in the list.
func (n NameList) Contains(name string) bool {
	for _, v := range n {
		if v == name {
			return true
		}
	}
	return false
}

// DecodeGroup parses a stored group document. Decoding is lenient where old
// document shapes require it (see NameList); unknown fields are dropped.
func DecodeGroup(data []byte) (*Group, error) {
	var g Group
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to decode group document: %w", err)
	}
	if g.Users == nil {
		g.Users = make(map[string]Wishlist)
	}
	return &g, nil
}

// Encode serializes the group document for storage.
func (g *Group) Encode() ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode group document: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy of the group document.
func (g *Group) Clone() *Group {
	out := *g
	out.Users = make(map[string]Wishlist, len(g.Users))
	for name, list := range g.Users {
		items := make([]Item, len(list.Items))
		for i, item := range list.Items {
			items[i] = item
			items[i].ClaimedBy = append(NameList(nil), item.ClaimedBy...)
			items[i].SplitWith = append(NameList(nil), item.SplitWith...)
		}
		out.Users[name] = Wishlist{Items: items}
	}
	return &out
}

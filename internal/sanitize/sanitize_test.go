package sanitize

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kf5fay/group-gifting/internal/models"
	"github.com/kf5fay/group-gifting/internal/validate"
)

func TestText(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"plain text unchanged", "wool socks", 100, "wool socks"},
		{"script stripped", `<script>alert("x")</script>Socks`, 100, "Socks"},
		{"tags stripped, text kept", "<b>Socks</b> size 10", 100, "Socks size 10"},
		{"entities decoded to plain text", "Tom &amp; Jerry", 100, "Tom & Jerry"},
		{"ampersand survives round trip", "Tom & Jerry", 100, "Tom & Jerry"},
		{"whitespace trimmed", "  Socks  ", 100, "Socks"},
		{"truncated to limit", "abcdefgh", 5, "abcde"},
		{"img onerror stripped", `<img src=x onerror=alert(1)>gift`, 100, "gift"},
		{"entity-encoded tags fully stripped", "&lt;b&gt;BOSS&lt;/b&gt;", 100, "BOSS"},
		{"double-encoded script fully stripped", "&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;hi", 100, "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Text(tt.in, tt.maxLen)
			if got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"plain",
		`<script>alert("x")</script>Socks`,
		"Tom & Jerry <3",
		"a < b && c > d",
		strings.Repeat("x", 600),
		`"quoted" and 'single'`,
		"&lt;b&gt;BOSS&lt;/b&gt;",
		"&lt;img src=x onerror=alert(1)&gt;gift",
		"&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;",
		"&amp;amp;amp;lt;b&amp;amp;amp;gt;deep",
	}
	for _, in := range inputs {
		once := Text(in, validate.MaxDescriptionLen)
		twice := Text(once, validate.MaxDescriptionLen)
		if once != twice {
			t.Errorf("Text not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func testGroup() *models.Group {
	return &models.Group{
		GroupID:   "smith-family",
		GroupName: "<b>Smith</b> Family",
		EventType: "christmas",
		EventDate: "2026-12-25",
		CreatedBy: "Ann",
		Users: map[string]models.Wishlist{
			"Ann": {Items: []models.Item{
				{
					Description: `Socks<script>alert("x")</script>`,
					Priority:    "High",
					Price:       "$10",
					Notes:       "wool please",
					ClaimedBy:   models.NameList{"Bob"},
					Purchased:   true,
					SplitWith:   models.NameList{"Carol"},
				},
				{Description: "&lt;i&gt;Gloves&lt;/i&gt;"},
			}},
			"Bob": {},
		},
	}
}

func TestDocument(t *testing.T) {
	g := testGroup()
	got := Document(g)

	if got.GroupName != "Smith Family" {
		t.Errorf("GroupName = %q", got.GroupName)
	}
	ann := got.Users["Ann"].Items[0]
	if ann.Description != "Socks" {
		t.Errorf("Description = %q", ann.Description)
	}
	if ann.Priority != "high" {
		t.Errorf("Priority = %q, want lowercased", ann.Priority)
	}
	if !ann.Purchased {
		t.Error("Purchased flag lost")
	}
	if !ann.ClaimedBy.Contains("Bob") || !ann.SplitWith.Contains("Carol") {
		t.Errorf("claim lists lost: %v / %v", ann.ClaimedBy, ann.SplitWith)
	}
	if desc := got.Users["Ann"].Items[1].Description; desc != "Gloves" {
		t.Errorf("entity-encoded description = %q, want fully stripped", desc)
	}

	// Empty wishlists come back with a non-nil, empty item slice.
	bob, ok := got.Users["Bob"]
	if !ok {
		t.Fatal("member Bob dropped")
	}
	if bob.Items == nil || len(bob.Items) != 0 {
		t.Errorf("empty wishlist items = %#v, want []", bob.Items)
	}

	// Input untouched.
	if g.Users["Ann"].Items[0].Description == "Socks" {
		t.Error("Document mutated its input")
	}
}

func TestDocument_Idempotent(t *testing.T) {
	once := Document(testGroup())
	twice := Document(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Document not idempotent:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}

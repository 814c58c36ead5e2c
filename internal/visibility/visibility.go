// Package visibility derives the member-specific view of a group document.
//
// The one rule of the app: a member must not see who claimed, split or bought
// the items on their own wishlist, while seeing all of that on everyone
// else's. Filtering is pure; the stored document is never modified.
package visibility

import (
	"github.com/kf5fay/group-gifting/internal/models"
)

// ForMember returns the view of the group appropriate for the named requesting
// member: claim, split and purchase state is blanked on every item in that
// member's own wishlist and left untouched everywhere else.
//
// An empty member name means an observer (admin dashboard); observers see the
// raw document and are never recorded in it.
func ForMember(g *models.Group, member string) *models.Group {
	view := g.Clone()
	if member == "" {
		return view
	}

	list, ok := view.Users[member]
	if !ok {
		return view
	}
	for i := range list.Items {
		list.Items[i].ClaimedBy = nil
		list.Items[i].Purchased = false
		list.Items[i].SplitWith = nil
	}
	view.Users[member] = list
	return view
}

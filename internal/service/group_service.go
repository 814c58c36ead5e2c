// Package service orchestrates the group document pipeline:
// validate -> sanitize -> store on writes, fetch -> filter on reads.
// It is the only programmatic surface the HTTP layer and admin tooling call.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kf5fay/group-gifting/internal/models"
	"github.com/kf5fay/group-gifting/internal/sanitize"
	"github.com/kf5fay/group-gifting/internal/storage"
	"github.com/kf5fay/group-gifting/internal/validate"
	"github.com/kf5fay/group-gifting/internal/visibility"
)

// ValidationError carries the list of human-readable problems found in a
// caller-supplied document. It is always recoverable: the caller fixes the
// document and resubmits.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid group document: " + strings.Join(e.Problems, "; ")
}

// GroupService implements the group document operations over a Store.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateOrUpdate validates, sanitizes and stores a raw group document under
// groupID, creating the group if absent and overwriting it whole otherwise.
//
// The overwrite is total: callers must merge their change into a full document
// fetched just prior. Two members who read-modify-write concurrently race, and
// the later write silently wins at document granularity. No version token
// guards against this.
//
// Returns the sanitized document as stored, a *ValidationError for bad input,
// or a wrapped storage error.
func (s *GroupService) CreateOrUpdate(ctx context.Context, groupID string, raw []byte) (*models.Group, error) {
	slog.Info("CreateOrUpdate request received", "group_id", groupID, "bytes", len(raw))

	if err := validate.GroupID(groupID); err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}
	if len(raw) > validate.MaxDocumentBytes {
		return nil, &ValidationError{Problems: []string{
			fmt.Sprintf("document too large: %d bytes (max %d)", len(raw), validate.MaxDocumentBytes),
		}}
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Problems: []string{"document is not a valid JSON object"}}
	}

	doc = validate.Normalize(doc)
	if problems := validate.Document(doc); len(problems) > 0 {
		slog.Info("CreateOrUpdate rejected", "group_id", groupID, "problems", len(problems))
		return nil, &ValidationError{Problems: problems}
	}

	group, err := decodeCanonical(doc)
	if err != nil {
		return nil, &ValidationError{Problems: []string{err.Error()}}
	}
	if problems := memberNameProblems(group.Users); len(problems) > 0 {
		slog.Info("CreateOrUpdate rejected", "group_id", groupID, "problems", len(problems))
		return nil, &ValidationError{Problems: problems}
	}
	group.GroupID = groupID
	group = sanitize.Document(group)

	data, err := group.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode group %s: %w", groupID, err)
	}
	if err := s.store.PutGroup(ctx, groupID, data); err != nil {
		slog.Error("CreateOrUpdate failed", "group_id", groupID, "error", err)
		return nil, fmt.Errorf("failed to store group %s: %w", groupID, err)
	}

	slog.Info("Group stored", "group_id", groupID, "members", len(group.Users))
	return group, nil
}

// Get fetches the document for groupID and returns the view appropriate for
// the requesting member. An empty member means observer access: the raw
// document, unfiltered. Returns storage.ErrNotFound when the group is absent.
func (s *GroupService) Get(ctx context.Context, groupID, member string) (*models.Group, error) {
	data, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	group, err := models.DecodeGroup(data)
	if err != nil {
		return nil, fmt.Errorf("stored document for group %s is unreadable: %w", groupID, err)
	}
	group.GroupID = groupID

	return visibility.ForMember(group, member), nil
}

// Delete removes the group's document. There is no recovery.
// Returns storage.ErrNotFound when the group is absent.
func (s *GroupService) Delete(ctx context.Context, groupID string) error {
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

// SweepExpired deletes every group unmodified for longer than maxAge and
// returns the number removed. It is idempotent: a repeat call with no
// intervening writes removes nothing.
func (s *GroupService) SweepExpired(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep failed: %w", err)
	}
	if n > 0 {
		slog.Info("Swept expired groups", "count", n, "max_age", maxAge)
	}
	return n, nil
}

// memberNameProblems rejects member names the sanitizer would erase or merge.
// Sanitization drops a member whose name strips to nothing and overwrites one
// whose name collides with another after stripping; losing a whole wishlist
// silently is worse than bouncing the write.
func memberNameProblems(users map[string]models.Wishlist) []string {
	seen := make(map[string]string, len(users))
	var problems []string
	for name := range users {
		clean := sanitize.Text(name, validate.MaxMemberNameLen)
		if clean == "" {
			problems = append(problems, fmt.Sprintf("member name %q contains no usable text", name))
			continue
		}
		if other, ok := seen[clean]; ok {
			problems = append(problems, fmt.Sprintf("member names %q and %q are the same after sanitization", other, name))
			continue
		}
		seen[clean] = name
	}
	return problems
}

// decodeCanonical converts a normalized, validated raw document into the typed
// model. Unknown keys are dropped here: the typed shape is the allow-list.
func decodeCanonical(doc map[string]any) (*models.Group, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("document could not be re-encoded")
	}
	return models.DecodeGroup(data)
}

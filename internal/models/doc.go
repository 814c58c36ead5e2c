// Package models defines the core domain models for the gift-exchange service.
//
// # Document model
//
// The unit of storage is one Group document per group id:
//   - Group: one gift-exchange event, holding every member's wishlist
//   - Wishlist: an ordered list of items for one member
//   - Item: a single wishlist entry with claim/split/purchase state
//
// Members are identified by display name strings scoped to their group; there
// are no global user accounts.
//
// # Design Principles
//
// 1. **Whole-document granularity**: the group document is read and written as
// a unit; there is no per-item persistence.
// 2. **Arrays, never scalars**: claim sets are always JSON arrays on output.
// Old documents stored a single claimant as a bare string, so NameList accepts
// both shapes on decode.
// 3. **Client-supplied identity**: CreatedBy and member names are trusted as
// sent; nothing verifies them.
package models

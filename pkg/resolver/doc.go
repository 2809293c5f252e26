// Package resolver implements per-candidate conflict resolution for linking
// dotfiles into the home directory.
//
// For each candidate the resolver inspects the destination fresh, applies
// the blanket run policy when one is active, or asks the decision provider
// for a skip/overwrite/backup choice. Sticky choices promote themselves to
// the run policy for all remaining candidates. Every filesystem failure is
// fatal to the run: a partially-linked environment with no record of
// progress is worse than stopping early.
package resolver

package symbols

import "github.com/google/uuid"

// MintIDs traverses the symbol tree post-population, striking a stable
// external id for every symbol that doesn't already have one
// (spec.md §4.2: "Unique-id minting traverses the tree post-population
// for stable external references"). It is idempotent — re-running after
// more symbols were added only mints ids for the new ones, so a
// consumer can call it again after an incremental re-analysis without
// invalidating ids it already handed out.
//
// A random v4 UUID (github.com/google/uuid) is struck once per symbol
// rather than a tree-position-derived counter, because spec.md requires
// ids to remain "stable" across symbol-table mutation within the same
// session — a position-derived id would shift if an earlier sibling were
// removed or reordered by the driver's redeclaration-compatibility pass.
func MintIDs(root *Symbol) {
	mint(root)
}

func mint(s *Symbol) {
	if s.uid == "" {
		s.uid = uuid.NewString()
	}
	for _, list := range s.Children {
		for _, child := range list {
			mint(child)
		}
	}
}

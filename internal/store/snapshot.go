package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/cppsem/cppsem/internal/symbols"
	"github.com/cppsem/cppsem/internal/token"
	"github.com/cppsem/cppsem/internal/xref"
)

// xrefKinds enumerates every xref.Kind the recorder tracks, in a fixed
// order, since xref.Recorder exposes per-kind queries rather than a
// single "everything" iterator.
var xrefKinds = []xref.Kind{xref.Resolved, xref.OverloadedResolution, xref.NeedValueButType}

// SaveSnapshot persists the symbols below root (root itself gets no row,
// so top-level symbols have no parent uid) and rec's cross-reference
// index under label, replacing any prior snapshot with the same label.
// Symbols must already have MintIDs run on them: a symbol with no UID is
// skipped, since the snapshot's foreign keys are UID-based.
func SaveSnapshot(s *Store, label string, root *symbols.Symbol, rec *xref.Recorder) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE label = ?`, label); err != nil {
		return fmt.Errorf("clear prior snapshot %q: %w", label, err)
	}
	res, err := tx.Exec(`INSERT INTO snapshots (label, created_unix) VALUES (?, ?)`, label, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert snapshot %q: %w", label, err)
	}
	snapID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read snapshot id: %w", err)
	}

	symStmt, err := tx.Prepare(`INSERT INTO symbols (uid, snapshot_id, parent_uid, name, kind, qualified_name, type_string) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer symStmt.Close()

	var walk func(sym *symbols.Symbol) error
	walk = func(sym *symbols.Symbol) error {
		if sym.UID() == "" {
			return nil
		}
		var parentUID any
		if sym.Parent != nil && sym.Parent.UID() != "" && sym.Parent.Kind != symbols.Root {
			parentUID = sym.Parent.UID()
		}
		var typeString any
		if sym.Type != nil {
			typeString = sym.Type.String()
		}
		if _, err := symStmt.Exec(sym.UID(), snapID, parentUID, sym.Name, sym.Kind.String(), sym.QualifiedName(), typeString); err != nil {
			return fmt.Errorf("insert symbol %s: %w", sym.QualifiedName(), err)
		}
		for _, child := range orderedChildren(sym) {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, child := range orderedChildren(root) {
		if err := walk(child); err != nil {
			return err
		}
	}

	xrefStmt, err := tx.Prepare(`INSERT INTO xrefs (snapshot_id, kind, file, line, offset, count, symbol_uid, seq) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare xref insert: %w", err)
	}
	defer xrefStmt.Close()

	for _, kind := range xrefKinds {
		for _, span := range rec.AllSpans(kind) {
			for seq, sym := range rec.SymbolsAt(kind, span) {
				if sym.UID() == "" {
					continue
				}
				if _, err := xrefStmt.Exec(snapID, kind.String(), span.Origin.File, span.Origin.Line, span.Offset, span.Count, sym.UID(), seq); err != nil {
					return fmt.Errorf("insert xref at %s:%d: %w", span.Origin.File, span.Origin.Line, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot %q: %w", label, err)
	}
	return nil
}

// orderedChildren returns sym's direct children sorted by name then
// declaration order, so a reloaded snapshot's tree walk is deterministic
// regardless of Children's map iteration order.
func orderedChildren(sym *symbols.Symbol) []*symbols.Symbol {
	names := make([]string, 0, len(sym.Children))
	for name := range sym.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []*symbols.Symbol
	for _, name := range names {
		out = append(out, sym.Children[name]...)
	}
	return out
}

// SymbolRow is one row of a loaded snapshot's symbol table.
type SymbolRow struct {
	UID           string
	ParentUID     string
	Name          string
	Kind          string
	QualifiedName string
	TypeString    string
}

// XrefRow is one row of a loaded snapshot's cross-reference table.
type XrefRow struct {
	Kind      string
	File      string
	Line      int
	Offset    int
	Count     int
	SymbolUID string
}

// LoadSymbols returns every symbol row saved under label, ordered by
// qualified name for deterministic comparison.
func (s *Store) LoadSymbols(label string) ([]SymbolRow, error) {
	rows, err := s.db.Query(`
		SELECT sy.uid, COALESCE(sy.parent_uid, ''), sy.name, sy.kind, sy.qualified_name, COALESCE(sy.type_string, '')
		FROM symbols sy JOIN snapshots sn ON sy.snapshot_id = sn.id
		WHERE sn.label = ?
		ORDER BY sy.qualified_name, sy.uid`, label)
	if err != nil {
		return nil, fmt.Errorf("query symbols for %q: %w", label, err)
	}
	defer rows.Close()

	var out []SymbolRow
	for rows.Next() {
		var r SymbolRow
		if err := rows.Scan(&r.UID, &r.ParentUID, &r.Name, &r.Kind, &r.QualifiedName, &r.TypeString); err != nil {
			return nil, fmt.Errorf("scan symbol row for %q: %w", label, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadXrefs returns every cross-reference row saved under label, ordered
// by span then insertion sequence.
func (s *Store) LoadXrefs(label string) ([]XrefRow, error) {
	rows, err := s.db.Query(`
		SELECT x.kind, x.file, x.line, x.offset, x.count, x.symbol_uid
		FROM xrefs x JOIN snapshots sn ON x.snapshot_id = sn.id
		WHERE sn.label = ?
		ORDER BY x.file, x.line, x.offset, x.kind, x.seq`, label)
	if err != nil {
		return nil, fmt.Errorf("query xrefs for %q: %w", label, err)
	}
	defer rows.Close()

	var out []XrefRow
	for rows.Next() {
		var r XrefRow
		if err := rows.Scan(&r.Kind, &r.File, &r.Line, &r.Offset, &r.Count, &r.SymbolUID); err != nil {
			return nil, fmt.Errorf("scan xref row for %q: %w", label, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DiffSymbols compares two snapshots' symbol tables by qualified name and
// reports qualified names present in want but missing or changed in got,
// and present in got but not in want (spec.md §9's regression-test use:
// a snapshot reloaded and diffed against a fresh run should be empty).
func DiffSymbols(want, got []SymbolRow) []string {
	byName := make(map[string]SymbolRow, len(got))
	for _, r := range got {
		byName[r.QualifiedName] = r
	}
	var diffs []string
	seen := make(map[string]bool, len(want))
	for _, w := range want {
		seen[w.QualifiedName] = true
		g, ok := byName[w.QualifiedName]
		if !ok {
			diffs = append(diffs, "missing: "+w.QualifiedName)
			continue
		}
		if g.Kind != w.Kind || g.TypeString != w.TypeString {
			diffs = append(diffs, fmt.Sprintf("changed: %s (kind %s->%s, type %s->%s)", w.QualifiedName, w.Kind, g.Kind, w.TypeString, g.TypeString))
		}
	}
	for _, g := range got {
		if !seen[g.QualifiedName] {
			diffs = append(diffs, "unexpected: "+g.QualifiedName)
		}
	}
	sort.Strings(diffs)
	return diffs
}

// spanFromRow reconstructs a token.Span from a loaded XrefRow, for a
// consumer that wants to re-key into a live xref.Recorder.
func spanFromRow(r XrefRow) token.Span {
	return token.Span{Origin: token.Origin{File: r.File, Line: r.Line}, Offset: r.Offset, Count: r.Count}
}

package symbols

import "strconv"

// SymbolTable owns every symbol created during one analysis session
// (spec.md §3 lifecycle: "Symbols are created during C8 and never
// destroyed; child links shared by pointer").
type SymbolTable struct {
	Root    *Symbol
	counter int
}

// NewSymbolTable creates an empty table with a freshly-created root
// symbol (the translation unit's global namespace).
func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{}
	t.Root = &Symbol{Name: "", Kind: Root, Children: map[string][]*Symbol{}}
	t.Root.internKey = t.nextKey()
	return t
}

func (t *SymbolTable) nextKey() string {
	t.counter++
	return "#" + strconv.Itoa(t.counter)
}

// NewSymbol allocates a fresh symbol under parent, with a stable interning
// key but no name-index entry yet — call AddChild to register it.
func (t *SymbolTable) NewSymbol(parent *Symbol, name string, kind SymbolKind) *Symbol {
	s := &Symbol{
		Name:     name,
		Kind:     kind,
		Parent:   parent,
		Children: map[string][]*Symbol{},
	}
	s.internKey = t.nextKey()
	return s
}

// AddChild registers symbol as one of parent's named children
// (spec.md §4.2 `add_child`). Overloads and redeclarations simply append;
// order is preserved so overload-set iteration order matches declaration
// order.
func (t *SymbolTable) AddChild(parent, symbol *Symbol) {
	parent.Children[symbol.Name] = append(parent.Children[symbol.Name], symbol)
}

// TryChildren returns the ordered list of parent's direct children named
// name (spec.md §4.2 `try_children`), or nil if there are none.
func TryChildren(parent *Symbol, name string) []*Symbol {
	return parent.Children[name]
}

// AllChildren returns every direct child of parent across all names, in
// the table's `Children` map order (map iteration, so unordered across
// names — callers that need determinism should sort).
func AllChildren(parent *Symbol) []*Symbol {
	var out []*Symbol
	for _, list := range parent.Children {
		out = append(out, list...)
	}
	return out
}

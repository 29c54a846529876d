package catalog

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/storefront-catalog/pkg/errors"
)

// Tree indexes categories by id and slug and links parents to children.
// It is immutable once built.
type Tree struct {
	categories []Category
	byID       map[string]int
	bySlug     map[string]int
	children   map[string][]string
	roots      []string
}

// Node is a category with its nested children, used for facet rendering.
type Node struct {
	Category
	Children []Node `json:"children"`
}

// NewTree indexes categories and verifies that no parent chain loops.
// Categories whose parent is unknown are treated as roots. When two categories
// share a slug, the first one wins the slug lookup.
func NewTree(categories []Category) (*Tree, error) {
	t := &Tree{
		categories: make([]Category, len(categories)),
		byID:       make(map[string]int, len(categories)),
		bySlug:     make(map[string]int, len(categories)),
		children:   make(map[string][]string),
	}
	copy(t.categories, categories)

	for i, c := range t.categories {
		if _, dup := t.byID[c.ID]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeCatalogIntegrity, fmt.Sprintf("duplicate category id %q", c.ID)).
				WithDetails(map[string]any{"category_id": c.ID})
		}
		t.byID[c.ID] = i
		if _, taken := t.bySlug[c.Slug]; !taken && c.Slug != "" {
			t.bySlug[c.Slug] = i
		}
	}

	for _, c := range t.categories {
		parent, ok := t.parentOf(c.ID)
		if !ok {
			t.roots = append(t.roots, c.ID)
			continue
		}
		t.children[parent] = append(t.children[parent], c.ID)
	}

	if err := t.checkAcyclic(); err != nil {
		return nil, err
	}
	return t, nil
}

// checkAcyclic walks every parent chain once, marking nodes as it goes.
func (t *Tree) checkAcyclic() error {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(t.categories))

	for _, start := range t.categories {
		if state[start.ID] == done {
			continue
		}
		var chain []string
		id := start.ID
		for state[id] != done {
			if state[id] == inProgress {
				return cycleError(id, chain)
			}
			state[id] = inProgress
			chain = append(chain, id)
			parent, ok := t.parentOf(id)
			if !ok {
				break
			}
			id = parent
		}
		for _, visited := range chain {
			state[visited] = done
		}
	}
	return nil
}

func (t *Tree) parentOf(id string) (string, bool) {
	idx, ok := t.byID[id]
	if !ok {
		return "", false
	}
	parent := t.categories[idx].ParentID
	if parent == nil {
		return "", false
	}
	if _, known := t.byID[*parent]; !known {
		return "", false
	}
	return *parent, true
}

func cycleError(at string, chain []string) error {
	return pkgerrors.New(pkgerrors.CodeCatalogIntegrity, fmt.Sprintf("category parent chain loops at %q", at)).
		WithDetails(map[string]any{"category_id": at, "chain": chain})
}

// Len is the number of categories in the tree.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.categories)
}

// Categories returns the categories in their original order.
func (t *Tree) Categories() []Category {
	if t == nil {
		return nil
	}
	out := make([]Category, len(t.categories))
	copy(out, t.categories)
	return out
}

// ByID resolves a category id.
func (t *Tree) ByID(id string) (Category, bool) {
	if t == nil {
		return Category{}, false
	}
	idx, ok := t.byID[id]
	if !ok {
		return Category{}, false
	}
	return t.categories[idx], true
}

// BySlug resolves a category slug.
func (t *Tree) BySlug(slug string) (Category, bool) {
	if t == nil {
		return Category{}, false
	}
	idx, ok := t.bySlug[slug]
	if !ok {
		return Category{}, false
	}
	return t.categories[idx], true
}

// Descendants returns id followed by every category reachable through child
// links, breadth first. A node seen twice means the links loop and the walk stops
// with a CATALOG_INTEGRITY error.
func (t *Tree) Descendants(id string) ([]string, error) {
	if t == nil {
		return nil, nil
	}
	if _, ok := t.byID[id]; !ok {
		return nil, nil
	}

	visited := map[string]struct{}{id: {}}
	out := []string{id}
	for i := 0; i < len(out); i++ {
		for _, child := range t.children[out[i]] {
			if _, seen := visited[child]; seen {
				return nil, cycleError(child, out)
			}
			visited[child] = struct{}{}
			out = append(out, child)
		}
	}
	return out, nil
}

// DescendantsBySlug resolves slug and returns its inclusive descendant ids.
// An unknown slug yields ok=false.
func (t *Tree) DescendantsBySlug(slug string) (ids []string, ok bool, err error) {
	category, found := t.BySlug(slug)
	if !found {
		return nil, false, nil
	}
	ids, err = t.Descendants(category.ID)
	if err != nil {
		return nil, true, err
	}
	return ids, true, nil
}

// Nested renders the tree as nested nodes starting at the roots.
func (t *Tree) Nested() []Node {
	if t == nil {
		return []Node{}
	}
	nodes := make([]Node, 0, len(t.roots))
	for _, id := range t.roots {
		nodes = append(nodes, t.node(id))
	}
	return nodes
}

func (t *Tree) node(id string) Node {
	n := Node{Category: t.categories[t.byID[id]], Children: []Node{}}
	for _, child := range t.children[id] {
		n.Children = append(n.Children, t.node(child))
	}
	return n
}

package catalog

import (
	"encoding/json"
	"fmt"
)

// Snapshot is an immutable copy of the catalog: products, categories, the
// category tree built from them and the derived metadata. Version increases with
// every load so consumers can cheaply tell two snapshots apart.
type Snapshot struct {
	Version    uint64
	Products   []Product
	Categories []Category
	Tree       *Tree
	Metadata   Metadata
}

// NewSnapshot copies the inputs and derives the tree and metadata.
func NewSnapshot(version uint64, products []Product, categories []Category) (*Snapshot, error) {
	tree, err := NewTree(categories)
	if err != nil {
		return nil, err
	}
	p := make([]Product, len(products))
	copy(p, products)
	return &Snapshot{
		Version:    version,
		Products:   p,
		Categories: tree.Categories(),
		Tree:       tree,
		Metadata:   ComputeMetadata(p, DefaultMetadata()),
	}, nil
}

// EmptySnapshot holds no products or categories.
func EmptySnapshot() *Snapshot {
	tree, _ := NewTree(nil)
	return &Snapshot{
		Products:   []Product{},
		Categories: []Category{},
		Tree:       tree,
		Metadata:   DefaultMetadata(),
	}
}

type snapshotPayload struct {
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
}

// MarshalPayload serializes the raw catalog data. Derived fields are rebuilt on decode.
func (s *Snapshot) MarshalPayload() ([]byte, error) {
	return json.Marshal(snapshotPayload{Products: s.Products, Categories: s.Categories})
}

// UnmarshalPayload rebuilds a snapshot from MarshalPayload output.
func UnmarshalPayload(version uint64, raw []byte) (*Snapshot, error) {
	var payload snapshotPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode catalog payload: %w", err)
	}
	return NewSnapshot(version, payload.Products, payload.Categories)
}

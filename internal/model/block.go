package model

// Block is a vineyard block: a named planting of a cultivar supplied by
// a grower. Blocks have a non-owning one-to-many relationship to
// intakes; deleting a block with existing intakes is refused by the
// repository rather than cascading.
type Block struct {
	ID       uint64   `json:"id"`
	Name     string   `json:"name"`
	Cultivar *string  `json:"cultivar,omitempty"`
	Supplier *string  `json:"supplier,omitempty"`
	Hectares *float64 `json:"hectares,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

// BlockCreate carries the fields for a new block.
type BlockCreate struct {
	Name     string   `json:"name"`
	Cultivar *string  `json:"cultivar"`
	Supplier *string  `json:"supplier"`
	Hectares *float64 `json:"hectares"`
	Notes    *string  `json:"notes"`
}

// BlockUpdate is a partial update: only non-nil fields are applied.
type BlockUpdate struct {
	Name     *string  `json:"name"`
	Cultivar *string  `json:"cultivar"`
	Supplier *string  `json:"supplier"`
	Hectares *float64 `json:"hectares"`
	Notes    *string  `json:"notes"`
}

// BlockSubdivision is a named sub-area within a block.
type BlockSubdivision struct {
	ID           uint64   `json:"id"`
	BlockID      uint64   `json:"block_id"`
	Name         string   `json:"name"`
	AreaHectares *float64 `json:"area_hectares,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// BlockSubdivisionCreate carries the fields for a new subdivision. The
// parent block id is taken from the route, not the body.
type BlockSubdivisionCreate struct {
	BlockID      uint64   `json:"-"`
	Name         string   `json:"name"`
	AreaHectares *float64 `json:"area_hectares"`
	Notes        *string  `json:"notes"`
}

// BlockSubdivisionUpdate is a partial update for a subdivision.
type BlockSubdivisionUpdate struct {
	Name         *string  `json:"name"`
	AreaHectares *float64 `json:"area_hectares"`
	Notes        *string  `json:"notes"`
}

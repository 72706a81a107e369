package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/TheSmitCode/funwhine/internal/model"
)

var blockColumns = []string{"id", "name", "cultivar", "supplier", "hectares", "notes"}

func scanBlock(s Scanner) (model.Block, error) {
	var (
		b        model.Block
		cultivar sql.NullString
		supplier sql.NullString
		hectares sql.NullFloat64
		notes    sql.NullString
	)
	if err := s.Scan(&b.ID, &b.Name, &cultivar, &supplier, &hectares, &notes); err != nil {
		return model.Block{}, err
	}
	if cultivar.Valid {
		v := cultivar.String
		b.Cultivar = &v
	}
	if supplier.Valid {
		v := supplier.String
		b.Supplier = &v
	}
	if hectares.Valid {
		v := hectares.Float64
		b.Hectares = &v
	}
	if notes.Valid {
		v := notes.String
		b.Notes = &v
	}
	return b, nil
}

func insertBlock(in model.BlockCreate) ([]string, []any, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, nil, &ValidationError{Field: "name", Reason: "required"}
	}
	cols := []string{"name", "cultivar", "supplier", "hectares", "notes"}
	args := []any{name, strOrNil(in.Cultivar), strOrNil(in.Supplier), floatOrNil(in.Hectares), strOrNil(in.Notes)}
	return cols, args, nil
}

func applyBlockUpdate(in model.BlockUpdate) ([]string, []any, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, nil, &ValidationError{Field: "name", Reason: "must not be blank"}
		}
		set("name", strings.TrimSpace(*in.Name))
	}
	if in.Cultivar != nil {
		set("cultivar", *in.Cultivar)
	}
	if in.Supplier != nil {
		set("supplier", *in.Supplier)
	}
	if in.Hectares != nil {
		set("hectares", *in.Hectares)
	}
	if in.Notes != nil {
		set("notes", *in.Notes)
	}
	return sets, args, nil
}

var subdivisionColumns = []string{"id", "block_id", "name", "area_hectares", "notes"}

func scanSubdivision(s Scanner) (model.BlockSubdivision, error) {
	var (
		sd    model.BlockSubdivision
		area  sql.NullFloat64
		notes sql.NullString
	)
	if err := s.Scan(&sd.ID, &sd.BlockID, &sd.Name, &area, &notes); err != nil {
		return model.BlockSubdivision{}, err
	}
	if area.Valid {
		v := area.Float64
		sd.AreaHectares = &v
	}
	if notes.Valid {
		v := notes.String
		sd.Notes = &v
	}
	return sd, nil
}

func insertSubdivision(in model.BlockSubdivisionCreate) ([]string, []any, error) {
	if in.BlockID == 0 {
		return nil, nil, &ValidationError{Field: "block_id", Reason: "required"}
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, nil, &ValidationError{Field: "name", Reason: "required"}
	}
	cols := []string{"block_id", "name", "area_hectares", "notes"}
	args := []any{in.BlockID, strings.TrimSpace(in.Name), floatOrNil(in.AreaHectares), strOrNil(in.Notes)}
	return cols, args, nil
}

func applySubdivisionUpdate(in model.BlockSubdivisionUpdate) ([]string, []any, error) {
	var sets []string
	var args []any
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, nil, &ValidationError{Field: "name", Reason: "must not be blank"}
		}
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*in.Name))
	}
	if in.AreaHectares != nil {
		sets = append(sets, "area_hectares = ?")
		args = append(args, *in.AreaHectares)
	}
	if in.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *in.Notes)
	}
	return sets, args, nil
}

// BlockRepo provides CRUD for vineyard blocks and their subdivisions.
type BlockRepo struct {
	*Repo[model.Block, model.BlockCreate, model.BlockUpdate]
	Subdivisions *Repo[model.BlockSubdivision, model.BlockSubdivisionCreate, model.BlockSubdivisionUpdate]
}

// NewBlockRepo returns a BlockRepo bound to the given database.
func NewBlockRepo(db *sql.DB) *BlockRepo {
	return &BlockRepo{
		Repo: NewRepo(db, Mapper[model.Block, model.BlockCreate, model.BlockUpdate]{
			Table:   "blocks",
			Columns: blockColumns,
			Scan:    scanBlock,
			Insert:  insertBlock,
			Apply:   applyBlockUpdate,
			ID:      func(b *model.Block) uint64 { return b.ID },
		}),
		Subdivisions: NewRepo(db, Mapper[model.BlockSubdivision, model.BlockSubdivisionCreate, model.BlockSubdivisionUpdate]{
			Table:   "block_subdivisions",
			Columns: subdivisionColumns,
			Scan:    scanSubdivision,
			Insert:  insertSubdivision,
			Apply:   applySubdivisionUpdate,
			ID:      func(s *model.BlockSubdivision) uint64 { return s.ID },
		}),
	}
}

// ListSubdivisions returns all subdivisions of a block ordered by id.
func (r *BlockRepo) ListSubdivisions(ctx context.Context, blockID uint64) ([]model.BlockSubdivision, error) {
	query := "SELECT " + strings.Join(subdivisionColumns, ", ") + " FROM block_subdivisions WHERE block_id = ? ORDER BY id"
	rows, err := r.DB.QueryContext(ctx, query, blockID)
	if err != nil {
		return nil, &StorageError{Op: "list block_subdivisions", Err: err}
	}
	defer rows.Close()
	out := make([]model.BlockSubdivision, 0)
	for rows.Next() {
		sd, err := scanSubdivision(rows)
		if err != nil {
			return nil, &StorageError{Op: "list block_subdivisions", Err: err}
		}
		out = append(out, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list block_subdivisions", Err: err}
	}
	return out, nil
}

// Remove deletes a block and its subdivisions. Blocks do not own their
// intakes, so a block that still has intakes referencing it cannot be
// deleted: the call fails with ErrConflict and nothing changes.
func (r *BlockRepo) Remove(ctx context.Context, id uint64) (*model.Block, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "begin blocks", Err: err}
	}
	query := "SELECT " + strings.Join(blockColumns, ", ") + " FROM blocks WHERE id = ? LIMIT 1"
	b, err := scanBlock(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return nil, nil
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "delete blocks", Err: err}
	}
	var refs int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM intakes WHERE block_id = ?", id).Scan(&refs); err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "delete blocks", Err: err}
	}
	if refs > 0 {
		_ = tx.Rollback()
		return nil, ErrConflict
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM block_subdivisions WHERE block_id = ?", id); err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "delete blocks", Err: err}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM blocks WHERE id = ?", id); err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "delete blocks", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "commit blocks", Err: err}
	}
	return &b, nil
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

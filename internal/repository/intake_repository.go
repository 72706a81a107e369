package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/TheSmitCode/funwhine/internal/model"
)

// IntakeRepo persists intake aggregates. An intake and its four child
// collections are written and removed as one atomic unit: the root row
// is inserted first so its generated id is available for foreign keys,
// children are inserted in caller order, and the whole unit commits or
// rolls back together.
type IntakeRepo struct {
	DB *sql.DB
}

// NewIntakeRepo returns an IntakeRepo bound to the given database.
func NewIntakeRepo(db *sql.DB) *IntakeRepo { return &IntakeRepo{DB: db} }

// IntakeFilter narrows List results. Nil fields are ignored.
type IntakeFilter struct {
	BlockID     *uint64
	CreatedByID *uint64
}

// Create writes the aggregate. Absent child lists are treated as
// empty, so a composite with no children is valid and yields a root
// with empty collections. Any invalid child row or storage failure
// rolls back the root and every staged sibling.
func (r *IntakeRepo) Create(ctx context.Context, in model.IntakeCreate) (*model.Intake, error) {
	if in.CreatedByID == 0 {
		return nil, &ValidationError{Field: "created_by_id", Reason: "required"}
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "begin intakes", Err: err}
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO intakes (block_id, created_by_id, weight_kg, notes) VALUES (?, ?, ?, ?)",
		uintOrNil(in.BlockID), in.CreatedByID, floatOrNil(in.WeightKG), strOrNil(in.Notes))
	if err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "insert intakes", Err: err}
	}
	rootID, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "insert intakes", Err: err}
	}
	id := uint64(rootID)

	// Children reference the freshly generated root id. Caller order
	// within each list is preserved by inserting rows one at a time.
	for _, c := range in.Components {
		if strings.TrimSpace(c.Name) == "" {
			_ = tx.Rollback()
			return nil, &ValidationError{Field: "components.name", Reason: "required"}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO intake_components (intake_id, name, weight_kg) VALUES (?, ?, ?)",
			id, strings.TrimSpace(c.Name), floatOrNil(c.WeightKG)); err != nil {
			_ = tx.Rollback()
			return nil, &StorageError{Op: "insert intake_components", Err: err}
		}
	}
	for _, a := range in.Additions {
		if strings.TrimSpace(a.Name) == "" {
			_ = tx.Rollback()
			return nil, &ValidationError{Field: "additions.name", Reason: "required"}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO additions (intake_id, name, amount, unit) VALUES (?, ?, ?, ?)",
			id, strings.TrimSpace(a.Name), floatOrNil(a.Amount), strOrNil(a.Unit)); err != nil {
			_ = tx.Rollback()
			return nil, &StorageError{Op: "insert additions", Err: err}
		}
	}
	for _, f := range in.Fruits {
		if strings.TrimSpace(f.ComponentName) == "" {
			_ = tx.Rollback()
			return nil, &ValidationError{Field: "fruits.component_name", Reason: "required"}
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO fruit (intake_id, component_name, volume_litres) VALUES (?, ?, ?)",
			id, strings.TrimSpace(f.ComponentName), floatOrNil(f.VolumeLitres)); err != nil {
			_ = tx.Rollback()
			return nil, &StorageError{Op: "insert fruit", Err: err}
		}
	}
	for _, l := range in.LabResults {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO lab_results (intake_id, brix, ph, ta, va, rs, alc, malic_acid, yan, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			id, floatOrNil(l.Brix), floatOrNil(l.PH), floatOrNil(l.TA), floatOrNil(l.VA),
			floatOrNil(l.RS), floatOrNil(l.Alc), floatOrNil(l.MalicAcid), floatOrNil(l.YAN),
			strOrNil(l.Notes)); err != nil {
			_ = tx.Rollback()
			return nil, &StorageError{Op: "insert lab_results", Err: err}
		}
	}

	intake, err := r.getTx(ctx, tx, id)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "commit intakes", Err: err}
	}
	return intake, nil
}

// Get fetches an intake and all its children; (nil, nil) when absent.
func (r *IntakeRepo) Get(ctx context.Context, id uint64) (*model.Intake, error) {
	return r.getTx(ctx, r.DB, id)
}

func (r *IntakeRepo) getTx(ctx context.Context, db queryer, id uint64) (*model.Intake, error) {
	root, err := scanIntake(db.QueryRowContext(ctx,
		"SELECT id, block_id, created_by_id, weight_kg, notes, created_at FROM intakes WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "get intakes", Err: err}
	}
	intakes := []*model.Intake{&root}
	if err := loadChildren(ctx, db, intakes); err != nil {
		return nil, err
	}
	return &root, nil
}

// List returns one bounded page of intakes, children included, newest
// first. An empty result is an empty slice, not an error.
func (r *IntakeRepo) List(ctx context.Context, offset, limit int, filter IntakeFilter) ([]model.Intake, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	query := "SELECT id, block_id, created_by_id, weight_kg, notes, created_at FROM intakes"
	var where []string
	var args []any
	if filter.BlockID != nil {
		where = append(where, "block_id = ?")
		args = append(args, *filter.BlockID)
	}
	if filter.CreatedByID != nil {
		where = append(where, "created_by_id = ?")
		args = append(args, *filter.CreatedByID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StorageError{Op: "list intakes", Err: err}
	}
	defer rows.Close()
	out := make([]model.Intake, 0, limit)
	for rows.Next() {
		it, err := scanIntake(rows)
		if err != nil {
			return nil, &StorageError{Op: "list intakes", Err: err}
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list intakes", Err: err}
	}
	if len(out) == 0 {
		return out, nil
	}
	refs := make([]*model.Intake, len(out))
	for i := range out {
		refs[i] = &out[i]
	}
	if err := loadChildren(ctx, r.DB, refs); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes an intake together with all its children in one
// transaction and returns the deleted snapshot, or (nil, nil) when no
// such intake existed.
func (r *IntakeRepo) Remove(ctx context.Context, id uint64) (*model.Intake, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Op: "begin intakes", Err: err}
	}
	snapshot, err := r.getTx(ctx, tx, id)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if snapshot == nil {
		_ = tx.Rollback()
		return nil, nil
	}
	for _, table := range []string{"intake_components", "additions", "fruit", "lab_results"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE intake_id = ?", id); err != nil {
			_ = tx.Rollback()
			return nil, &StorageError{Op: "delete " + table, Err: err}
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM intakes WHERE id = ?", id); err != nil {
		_ = tx.Rollback()
		return nil, &StorageError{Op: "delete intakes", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Op: "commit intakes", Err: err}
	}
	return snapshot, nil
}

func scanIntake(s Scanner) (model.Intake, error) {
	var (
		it      model.Intake
		blockID sql.NullInt64
		weight  sql.NullFloat64
		notes   sql.NullString
	)
	if err := s.Scan(&it.ID, &blockID, &it.CreatedByID, &weight, &notes, &it.CreatedAt); err != nil {
		return model.Intake{}, err
	}
	if blockID.Valid {
		v := uint64(blockID.Int64)
		it.BlockID = &v
	}
	if weight.Valid {
		v := weight.Float64
		it.WeightKG = &v
	}
	if notes.Valid {
		v := notes.String
		it.Notes = &v
	}
	it.Components = []model.IntakeComponent{}
	it.Additions = []model.Addition{}
	it.Fruits = []model.Fruit{}
	it.LabResults = []model.LabResult{}
	return it, nil
}

// loadChildren populates the four child collections for every intake in
// one query per table. Rows come back ordered by (intake_id, id) so the
// original insertion order within each list is preserved.
func loadChildren(ctx context.Context, db queryer, intakes []*model.Intake) error {
	if len(intakes) == 0 {
		return nil
	}
	index := make(map[uint64]*model.Intake, len(intakes))
	ids := make([]any, 0, len(intakes))
	marks := make([]string, 0, len(intakes))
	for _, it := range intakes {
		index[it.ID] = it
		ids = append(ids, it.ID)
		marks = append(marks, "?")
	}
	in := "(" + strings.Join(marks, ",") + ")"

	rows, err := db.QueryContext(ctx,
		"SELECT id, intake_id, name, weight_kg FROM intake_components WHERE intake_id IN "+in+" ORDER BY intake_id, id", ids...)
	if err != nil {
		return &StorageError{Op: "load intake_components", Err: err}
	}
	for rows.Next() {
		var c model.IntakeComponent
		var weight sql.NullFloat64
		if err := rows.Scan(&c.ID, &c.IntakeID, &c.Name, &weight); err != nil {
			rows.Close()
			return &StorageError{Op: "load intake_components", Err: err}
		}
		if weight.Valid {
			v := weight.Float64
			c.WeightKG = &v
		}
		if it, ok := index[c.IntakeID]; ok {
			it.Components = append(it.Components, c)
		}
	}
	if err := closeRows(rows); err != nil {
		return &StorageError{Op: "load intake_components", Err: err}
	}

	rows, err = db.QueryContext(ctx,
		"SELECT id, intake_id, name, amount, unit FROM additions WHERE intake_id IN "+in+" ORDER BY intake_id, id", ids...)
	if err != nil {
		return &StorageError{Op: "load additions", Err: err}
	}
	for rows.Next() {
		var a model.Addition
		var amount sql.NullFloat64
		var unit sql.NullString
		if err := rows.Scan(&a.ID, &a.IntakeID, &a.Name, &amount, &unit); err != nil {
			rows.Close()
			return &StorageError{Op: "load additions", Err: err}
		}
		if amount.Valid {
			v := amount.Float64
			a.Amount = &v
		}
		if unit.Valid {
			v := unit.String
			a.Unit = &v
		}
		if it, ok := index[a.IntakeID]; ok {
			it.Additions = append(it.Additions, a)
		}
	}
	if err := closeRows(rows); err != nil {
		return &StorageError{Op: "load additions", Err: err}
	}

	rows, err = db.QueryContext(ctx,
		"SELECT id, intake_id, component_name, volume_litres FROM fruit WHERE intake_id IN "+in+" ORDER BY intake_id, id", ids...)
	if err != nil {
		return &StorageError{Op: "load fruit", Err: err}
	}
	for rows.Next() {
		var f model.Fruit
		var volume sql.NullFloat64
		if err := rows.Scan(&f.ID, &f.IntakeID, &f.ComponentName, &volume); err != nil {
			rows.Close()
			return &StorageError{Op: "load fruit", Err: err}
		}
		if volume.Valid {
			v := volume.Float64
			f.VolumeLitres = &v
		}
		if it, ok := index[f.IntakeID]; ok {
			it.Fruits = append(it.Fruits, f)
		}
	}
	if err := closeRows(rows); err != nil {
		return &StorageError{Op: "load fruit", Err: err}
	}

	rows, err = db.QueryContext(ctx,
		"SELECT id, intake_id, brix, ph, ta, va, rs, alc, malic_acid, yan, notes FROM lab_results WHERE intake_id IN "+in+" ORDER BY intake_id, id", ids...)
	if err != nil {
		return &StorageError{Op: "load lab_results", Err: err}
	}
	for rows.Next() {
		var l model.LabResult
		var vals [8]sql.NullFloat64
		var notes sql.NullString
		if err := rows.Scan(&l.ID, &l.IntakeID, &vals[0], &vals[1], &vals[2], &vals[3],
			&vals[4], &vals[5], &vals[6], &vals[7], &notes); err != nil {
			rows.Close()
			return &StorageError{Op: "load lab_results", Err: err}
		}
		dests := []**float64{&l.Brix, &l.PH, &l.TA, &l.VA, &l.RS, &l.Alc, &l.MalicAcid, &l.YAN}
		for i, nv := range vals {
			if nv.Valid {
				v := nv.Float64
				*dests[i] = &v
			}
		}
		if notes.Valid {
			v := notes.String
			l.Notes = &v
		}
		if it, ok := index[l.IntakeID]; ok {
			it.LabResults = append(it.LabResults, l)
		}
	}
	if err := closeRows(rows); err != nil {
		return &StorageError{Op: "load lab_results", Err: err}
	}
	return nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}

func uintOrNil(v *uint64) any {
	if v == nil {
		return nil
	}
	return *v
}

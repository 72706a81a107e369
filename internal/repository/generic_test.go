package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheSmitCode/funwhine/internal/model"
)

const (
	blockSelect = "SELECT id, name, cultivar, supplier, hectares, notes FROM blocks WHERE id = ? LIMIT 1"
	blockList   = "SELECT id, name, cultivar, supplier, hectares, notes FROM blocks ORDER BY id LIMIT ? OFFSET ?"
)

func newMockBlockRepo(t *testing.T) (*BlockRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBlockRepo(db), mock
}

func blockRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "cultivar", "supplier", "hectares", "notes"})
}

func TestRepoGet(t *testing.T) {
	repo, mock := newMockBlockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(blockSelect)).
		WithArgs(1).
		WillReturnRows(blockRows().AddRow(1, "North Slope", "Pinotage", nil, 2.4, nil))

	b, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, uint64(1), b.ID)
	assert.Equal(t, "North Slope", b.Name)
	require.NotNil(t, b.Cultivar)
	assert.Equal(t, "Pinotage", *b.Cultivar)
	assert.Nil(t, b.Supplier)
	require.NotNil(t, b.Hectares)
	assert.InDelta(t, 2.4, *b.Hectares, 1e-9)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoGetAbsent(t *testing.T) {
	repo, mock := newMockBlockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(blockSelect)).
		WithArgs(404).
		WillReturnRows(blockRows())

	b, err := repo.Get(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, b)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoListEmpty(t *testing.T) {
	repo, mock := newMockBlockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(blockList)).
		WithArgs(100, 0).
		WillReturnRows(blockRows())

	got, err := repo.List(context.Background(), 0, 100)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoListClampsLimit(t *testing.T) {
	repo, mock := newMockBlockRepo(t)

	// 500 requested, ceiling applied; negative offset floored to zero.
	mock.ExpectQuery(regexp.QuoteMeta(blockList)).
		WithArgs(MaxPageSize, 0).
		WillReturnRows(blockRows().AddRow(1, "A", nil, nil, nil, nil).AddRow(2, "B", nil, nil, nil, nil))

	got, err := repo.List(context.Background(), -3, 500)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "B", got[1].Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreate(t *testing.T) {
	repo, mock := newMockBlockRepo(t)
	ha := 2.4

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO blocks (name, cultivar, supplier, hectares, notes) VALUES (?, ?, ?, ?, ?)")).
		WithArgs("North Slope", nil, nil, 2.4, nil).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta(blockSelect)).
		WithArgs(7).
		WillReturnRows(blockRows().AddRow(7, "North Slope", nil, nil, 2.4, nil))
	mock.ExpectCommit()

	b, err := repo.Create(context.Background(), model.BlockCreate{Name: " North Slope ", Hectares: &ha})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), b.ID)
	assert.Equal(t, "North Slope", b.Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateInvalid(t *testing.T) {
	repo, mock := newMockBlockRepo(t)

	// Validation fails before any statement reaches the database.
	_, err := repo.Create(context.Background(), model.BlockCreate{Name: "   "})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoCreateDuplicate(t *testing.T) {
	repo, mock := newMockBlockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO blocks")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'North Slope' for key 'blocks.name'"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), model.BlockCreate{Name: "North Slope"})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUpdatePartial(t *testing.T) {
	repo, mock := newMockBlockRepo(t)
	existing := &model.Block{ID: 7, Name: "North Slope"}
	ha := 3.1

	// Only the provided field appears in the SET clause.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE blocks SET hectares = ? WHERE id = ?")).
		WithArgs(3.1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(blockSelect)).
		WithArgs(7).
		WillReturnRows(blockRows().AddRow(7, "North Slope", nil, nil, 3.1, nil))
	mock.ExpectCommit()

	b, err := repo.Update(context.Background(), existing, model.BlockUpdate{Hectares: &ha})
	require.NoError(t, err)
	assert.Equal(t, "North Slope", b.Name)
	require.NotNil(t, b.Hectares)
	assert.InDelta(t, 3.1, *b.Hectares, 1e-9)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUpdateNothingSet(t *testing.T) {
	repo, mock := newMockBlockRepo(t)
	existing := &model.Block{ID: 7, Name: "North Slope"}

	b, err := repo.Update(context.Background(), existing, model.BlockUpdate{})
	require.NoError(t, err)
	assert.Same(t, existing, b)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepoUpdateStorageFailureRollsBack(t *testing.T) {
	repo, mock := newMockBlockRepo(t)
	existing := &model.Block{ID: 7, Name: "North Slope"}
	name := "South Slope"

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE blocks SET name = ? WHERE id = ?")).
		WithArgs("South Slope", 7).
		WillReturnError(errors.New("server has gone away"))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), existing, model.BlockUpdate{Name: &name})
	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "update blocks", serr.Op)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockRemove(t *testing.T) {
	repo, mock := newMockBlockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(blockSelect)).
		WithArgs(7).
		WillReturnRows(blockRows().AddRow(7, "North Slope", nil, nil, nil, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM intakes WHERE block_id = ?")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM block_subdivisions WHERE block_id = ?")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM blocks WHERE id = ?")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := repo.Remove(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "North Slope", b.Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockRemoveAbsent(t *testing.T) {
	repo, mock := newMockBlockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(blockSelect)).
		WithArgs(404).
		WillReturnRows(blockRows())
	mock.ExpectRollback()

	b, err := repo.Remove(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, b)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockRemoveWithIntakesConflicts(t *testing.T) {
	repo, mock := newMockBlockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(blockSelect)).
		WithArgs(7).
		WillReturnRows(blockRows().AddRow(7, "North Slope", nil, nil, nil, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM intakes WHERE block_id = ?")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectRollback()

	_, err := repo.Remove(context.Background(), 7)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, mock.ExpectationsWereMet())
}

package workflow

import (
	"testing"
	"time"

	"resto-pos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableFree_BlockedByActiveOrder(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	withSettings(t, db, nil)
	seedMenu(t, db)
	table := seedTable(t, db, 1)
	e := NewEngine(db, nil, nil)
	tables := NewTableManager(db)

	order := dineInOrder(t, e, table.ID)

	_, err := tables.Free(table.ID)
	require.ErrorIs(t, err, ErrTableUnavailable)
	assert.Equal(t, models.TableOccupied, tableStatus(t, db, table.ID))

	// Once the order is out of the way the table can be cleared.
	_, err = e.TransitionStatus(order.ID, models.StatusCancelled)
	require.NoError(t, err)

	freed, err := tables.Free(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, freed.Status)
}

func TestTableReserve(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	table := seedTable(t, db, 2)
	tables := NewTableManager(db)

	until := time.Now().Add(2 * time.Hour)
	reserved, err := tables.Reserve(table.ID, "Grace", "555-0101", until)
	require.NoError(t, err)
	assert.Equal(t, models.TableReserved, reserved.Status)
	assert.Equal(t, "Grace", reserved.ReservedName)

	// A reserved table cannot be reserved again.
	_, err = tables.Reserve(table.ID, "Heidi", "", until)
	assert.ErrorIs(t, err, ErrTableUnavailable)

	// Clearing releases the reservation details too.
	freed, err := tables.Free(table.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableAvailable, freed.Status)
	assert.Empty(t, freed.ReservedName)
	assert.Nil(t, freed.ReservedUntil)
}

func TestTableReserve_UnknownTable(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	tables := NewTableManager(db)

	_, err := tables.Reserve(42, "Ivan", "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestMerge_MovesActiveOrdersAndFreesSources(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	withSettings(t, db, nil)
	seedMenu(t, db)
	src1 := seedTable(t, db, 3)
	src2 := seedTable(t, db, 4)
	target := seedTable(t, db, 5)
	e := NewEngine(db, nil, nil)
	tables := NewTableManager(db)

	a := dineInOrder(t, e, src1.ID)
	b := dineInOrder(t, e, src2.ID)

	moved, err := tables.Merge([]uint{src1.ID, src2.ID}, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)

	for _, id := range []uint{a.ID, b.ID} {
		order, err := e.GetOrder(id)
		require.NoError(t, err)
		require.NotNil(t, order.TableID)
		assert.Equal(t, target.ID, *order.TableID)
	}

	assert.Equal(t, models.TableAvailable, tableStatus(t, db, src1.ID))
	assert.Equal(t, models.TableAvailable, tableStatus(t, db, src2.ID))
	assert.Equal(t, models.TableOccupied, tableStatus(t, db, target.ID))
}

func TestMerge_MissingTargetIsAtomic(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	withSettings(t, db, nil)
	seedMenu(t, db)
	src := seedTable(t, db, 6)
	e := NewEngine(db, nil, nil)
	tables := NewTableManager(db)

	order := dineInOrder(t, e, src.ID)

	_, err := tables.Merge([]uint{src.ID}, 99)
	require.ErrorIs(t, err, ErrInvalidTable)

	// Nothing moved, nothing freed.
	reloaded, err := e.GetOrder(order.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.TableID)
	assert.Equal(t, src.ID, *reloaded.TableID)
	assert.Equal(t, models.TableOccupied, tableStatus(t, db, src.ID))
}

func TestMerge_SelfMergeRejected(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	table := seedTable(t, db, 7)
	tables := NewTableManager(db)

	_, err := tables.Merge([]uint{table.ID}, table.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTransfer(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	withSettings(t, db, nil)
	seedMenu(t, db)
	from := seedTable(t, db, 8)
	to := seedTable(t, db, 9)
	e := NewEngine(db, nil, nil)
	tables := NewTableManager(db)

	order := dineInOrder(t, e, from.ID)

	// Wrong source table is refused.
	err := tables.Transfer(order.ID, to.ID, from.ID)
	require.ErrorIs(t, err, ErrOrderNotOnTable)

	require.NoError(t, tables.Transfer(order.ID, from.ID, to.ID))

	reloaded, err := e.GetOrder(order.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.TableID)
	assert.Equal(t, to.ID, *reloaded.TableID)

	assert.Equal(t, models.TableAvailable, tableStatus(t, db, from.ID))
	assert.Equal(t, models.TableOccupied, tableStatus(t, db, to.ID))
}

func TestTransfer_UnknownOrderAndTable(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	withSettings(t, db, nil)
	seedMenu(t, db)
	from := seedTable(t, db, 10)
	e := NewEngine(db, nil, nil)
	tables := NewTableManager(db)

	err := tables.Transfer(404, from.ID, from.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	order := dineInOrder(t, e, from.ID)
	err = tables.Transfer(order.ID, from.ID, 99)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestTransfer_ReservedTargetRejected(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	withSettings(t, db, nil)
	seedMenu(t, db)
	from := seedTable(t, db, 11)
	to := seedTable(t, db, 12)
	e := NewEngine(db, nil, nil)
	tables := NewTableManager(db)

	order := dineInOrder(t, e, from.ID)
	_, err := tables.Reserve(to.ID, "Heidi", "555-0102", time.Now().Add(time.Hour))
	require.NoError(t, err)

	err = tables.Transfer(order.ID, from.ID, to.ID)
	require.ErrorIs(t, err, ErrTableUnavailable)

	// The order stays put and the reservation holds.
	reloaded, err := e.GetOrder(order.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.TableID)
	assert.Equal(t, from.ID, *reloaded.TableID)
	assert.Equal(t, models.TableReserved, tableStatus(t, db, to.ID))
}

func TestMerge_ClearsSourceReservation(t *testing.T) {
	t.Parallel()
	db := testDB(t)
	withSettings(t, db, nil)
	seedMenu(t, db)
	src := seedTable(t, db, 13)
	dst := seedTable(t, db, 14)
	e := NewEngine(db, nil, nil)
	tables := NewTableManager(db)

	dineInOrder(t, e, src.ID)

	// A party seated on a table that still carries reservation details.
	until := time.Now().Add(time.Hour)
	require.NoError(t, db.Model(&models.Table{}).Where("id = ?", src.ID).
		Updates(map[string]interface{}{
			"reserved_name":  "Grace",
			"reserved_phone": "555-0101",
			"reserved_until": until,
		}).Error)

	moved, err := tables.Merge([]uint{src.ID}, dst.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	var freed models.Table
	require.NoError(t, db.First(&freed, src.ID).Error)
	assert.Equal(t, models.TableAvailable, freed.Status)
	assert.Empty(t, freed.ReservedName)
	assert.Empty(t, freed.ReservedPhone)
	assert.Nil(t, freed.ReservedUntil)
}

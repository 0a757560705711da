package workflow

import (
	"fmt"
	"time"

	"resto-pos/internal/models"

	"gorm.io/gorm"
)

// TableManager owns table occupancy. Tables change status only through it
// (or through the engine's in-transaction side effects), never by direct edits
// while an active order references them.
type TableManager struct {
	db *gorm.DB
}

func NewTableManager(db *gorm.DB) *TableManager {
	return &TableManager{db: db}
}

func (m *TableManager) get(tx *gorm.DB, tableID uint) (*models.Table, error) {
	var t models.Table
	if err := tx.First(&t, tableID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: table %d", ErrInvalidTable, tableID)
		}
		return nil, err
	}
	return &t, nil
}

// freeTable returns a table to the pool, dropping any reservation with it.
func freeTable(tx *gorm.DB, tableID uint) error {
	return tx.Model(&models.Table{}).
		Where("id = ?", tableID).
		Updates(map[string]interface{}{
			"status":         models.TableAvailable,
			"reserved_name":  "",
			"reserved_phone": "",
			"reserved_until": nil,
		}).Error
}

func activeOrderCount(tx *gorm.DB, tableID uint) (int64, error) {
	var n int64
	err := tx.Model(&models.Order{}).
		Where("table_id = ? AND status NOT IN ?", tableID,
			[]string{models.StatusCompleted, models.StatusCancelled}).
		Count(&n).Error
	return n, err
}

// Occupy marks a table occupied.
func (m *TableManager) Occupy(tableID uint) (*models.Table, error) {
	t, err := m.get(m.db, tableID)
	if err != nil {
		return nil, err
	}
	t.Status = models.TableOccupied
	if err := m.db.Save(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// Free releases a table. Refused while any active order still references it.
func (m *TableManager) Free(tableID uint) (*models.Table, error) {
	var t *models.Table
	err := m.db.Transaction(func(tx *gorm.DB) error {
		var err error
		t, err = m.get(tx, tableID)
		if err != nil {
			return err
		}
		n, err := activeOrderCount(tx, tableID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: table %d has %d active orders", ErrTableUnavailable, t.TableNumber, n)
		}
		if err := freeTable(tx, tableID); err != nil {
			return err
		}
		t, err = m.get(tx, tableID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Reserve holds an available table for a future party.
func (m *TableManager) Reserve(tableID uint, name, phone string, until time.Time) (*models.Table, error) {
	t, err := m.get(m.db, tableID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TableAvailable {
		return nil, fmt.Errorf("%w: table %d is %s", ErrTableUnavailable, t.TableNumber, t.Status)
	}
	t.Status = models.TableReserved
	t.ReservedName = name
	t.ReservedPhone = phone
	t.ReservedUntil = &until
	if err := m.db.Save(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// Merge reassigns every active order from the source tables to the target
// and frees each vacated source. All or nothing: a missing table fails the
// whole operation with no orders moved.
func (m *TableManager) Merge(sourceIDs []uint, targetID uint) (int, error) {
	moved := 0
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if _, err := m.get(tx, targetID); err != nil {
			return err
		}
		for _, src := range sourceIDs {
			if src == targetID {
				return fmt.Errorf("%w: cannot merge table %d into itself", ErrValidation, src)
			}
			if _, err := m.get(tx, src); err != nil {
				return err
			}
		}

		for _, src := range sourceIDs {
			res := tx.Model(&models.Order{}).
				Where("table_id = ? AND status NOT IN ?", src,
					[]string{models.StatusCompleted, models.StatusCancelled}).
				Update("table_id", targetID)
			if res.Error != nil {
				return res.Error
			}
			moved += int(res.RowsAffected)

			if err := freeTable(tx, src); err != nil {
				return err
			}
		}

		if moved > 0 {
			if err := tx.Model(&models.Table{}).
				Where("id = ?", targetID).
				Update("status", models.TableOccupied).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// Transfer moves one order between tables, occupying the target and freeing
// the source if it is left without active orders.
func (m *TableManager) Transfer(orderID, fromTableID, toTableID uint) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}
		if order.TableID == nil || *order.TableID != fromTableID {
			return fmt.Errorf("%w: order %s is not on table %d", ErrOrderNotOnTable, order.OrderNumber, fromTableID)
		}
		if !order.Active() {
			return fmt.Errorf("%w: order %s is %s", ErrValidation, order.OrderNumber, order.Status)
		}
		target, err := m.get(tx, toTableID)
		if err != nil {
			return err
		}
		if target.Status == models.TableReserved {
			return fmt.Errorf("%w: table %d is %s", ErrTableUnavailable, target.TableNumber, target.Status)
		}

		if err := tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Update("table_id", toTableID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Table{}).
			Where("id = ?", toTableID).
			Update("status", models.TableOccupied).Error; err != nil {
			return err
		}

		n, err := activeOrderCount(tx, fromTableID)
		if err != nil {
			return err
		}
		if n == 0 {
			if err := freeTable(tx, fromTableID); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns every table ordered by number.
func (m *TableManager) List() ([]models.Table, error) {
	var tables []models.Table
	if err := m.db.Order("table_number").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

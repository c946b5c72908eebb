package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/table-booking/hub"
	"github.com/yeremiapane/table-booking/models"
	"github.com/yeremiapane/table-booking/utils"
	"gorm.io/gorm"
)

type TableInput struct {
	Number   int `json:"number" binding:"required"`
	Capacity int `json:"capacity" binding:"required"`
}

func (in TableInput) validate() error {
	if in.Number < 1 || in.Capacity < 1 {
		return ErrInvalidTable
	}
	return nil
}

// TableService manages the restaurant's tables.
type TableService struct {
	store    *Store
	notifier Notifier
}

func NewTableService(store *Store, notifier Notifier) *TableService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &TableService{store: store, notifier: notifier}
}

func (s *TableService) List(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := s.store.WithContext(ctx).Order("number ASC").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (s *TableService) Get(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := s.store.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, notFound(err, ErrTableNotFound)
	}
	return &table, nil
}

func (s *TableService) Create(ctx context.Context, actor Actor, in TableInput) (*models.Table, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	table := models.Table{Number: in.Number, Capacity: in.Capacity}
	if err := s.store.WithContext(ctx).Create(&table).Error; err != nil {
		return nil, tableWriteError("create table", err)
	}

	logTable(&table, "Table created")
	s.notifier.Publish(hub.EventTableCreate, &table)
	return &table, nil
}

func (s *TableService) Update(ctx context.Context, actor Actor, id uint, in TableInput) (*models.Table, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var table models.Table
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&table, id).Error; err != nil {
			return notFound(err, ErrTableNotFound)
		}
		table.Number = in.Number
		table.Capacity = in.Capacity
		return tx.Model(&table).Select("number", "capacity").Updates(&table).Error
	})
	if err != nil {
		return nil, tableWriteError("update table", err)
	}

	logTable(&table, "Table updated")
	s.notifier.Publish(hub.EventTableUpdate, &table)
	return &table, nil
}

// Delete refuses to remove a table that any booking still references.
func (s *TableService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := requireStaff(actor); err != nil {
		return err
	}

	var table models.Table
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&table, id).Error; err != nil {
			return notFound(err, ErrTableNotFound)
		}
		var refs int64
		if err := tx.Model(&models.Booking{}).Where("table_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return ErrTableHasBookings
		}
		return tx.Delete(&table).Error
	})
	if err != nil {
		return tableWriteError("delete table", err)
	}

	logTable(&table, "Table deleted")
	s.notifier.Publish(hub.EventTableDelete, map[string]interface{}{"table_id": id})
	return nil
}

func tableWriteError(op string, err error) error {
	if be, ok := AsBookingError(err); ok {
		return be
	}
	if isDuplicateKey(err) {
		return ErrTableNumberTaken
	}
	if isForeignKeyViolation(err) {
		return ErrTableHasBookings
	}
	utils.ErrorLogger.Printf("Error during %s: %v", op, err)
	return fmt.Errorf("%s: %w", op, err)
}

func logTable(t *models.Table, msg string) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"table_id": t.ID,
		"number":   t.Number,
		"capacity": t.Capacity,
	}).Info(msg)
}

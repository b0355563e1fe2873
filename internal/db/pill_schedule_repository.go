package db

import (
	"errors"
	"time"

	"github.com/terraincognita07/pilltrack/internal/models"
	"gorm.io/gorm"
)

const pillScheduleBatchSize = 100

var errUnscopedPillScheduleFilter = errors.New("pill schedule filter must constrain at least one field")

type PillScheduleRepository struct {
	database *gorm.DB
}

func NewPillScheduleRepository(database *gorm.DB) *PillScheduleRepository {
	return &PillScheduleRepository{database: database}
}

// CreateBatch inserts entries in one statement batch. Dates are stored in UTC
// so that text comparisons in sqlite stay ordered.
func (repo *PillScheduleRepository) CreateBatch(entries []models.PillScheduleEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for index := range entries {
		entries[index].PillStartDate = entries[index].PillStartDate.UTC()
	}
	return repo.database.CreateInBatches(&entries, pillScheduleBatchSize).Error
}

func (repo *PillScheduleRepository) Find(filter models.PillScheduleFilter, order models.PillScheduleOrder, limit int) ([]models.PillScheduleEntry, error) {
	query := applyPillScheduleFilter(repo.database.Model(&models.PillScheduleEntry{}), filter)
	query = query.Order(pillScheduleOrderClause(order))
	if limit > 0 {
		query = query.Limit(limit)
	}

	entries := make([]models.PillScheduleEntry, 0)
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *PillScheduleRepository) FindOne(filter models.PillScheduleFilter, order models.PillScheduleOrder) (models.PillScheduleEntry, bool, error) {
	entries, err := repo.Find(filter, order, 1)
	if err != nil {
		return models.PillScheduleEntry{}, false, err
	}
	if len(entries) == 0 {
		return models.PillScheduleEntry{}, false, nil
	}
	return entries[0], true, nil
}

func (repo *PillScheduleRepository) UpdateMany(filter models.PillScheduleFilter, updates map[string]any) (int64, error) {
	if filter.IsEmpty() {
		return 0, errUnscopedPillScheduleFilter
	}
	result := applyPillScheduleFilter(repo.database.Model(&models.PillScheduleEntry{}), filter).Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (repo *PillScheduleRepository) DeleteMany(filter models.PillScheduleFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, errUnscopedPillScheduleFilter
	}
	result := applyPillScheduleFilter(repo.database, filter).Delete(&models.PillScheduleEntry{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func applyPillScheduleFilter(query *gorm.DB, filter models.PillScheduleFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.CycleID != nil {
		query = query.Where("cycle_id = ?", *filter.CycleID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsTaken != nil {
		query = query.Where("is_taken = ?", *filter.IsTaken)
	}
	if filter.ReminderEnabled != nil {
		query = query.Where("reminder_enabled = ?", *filter.ReminderEnabled)
	}
	if filter.MinPillNumber > 0 {
		query = query.Where("pill_number >= ?", filter.MinPillNumber)
	}
	if filter.MaxPillNumber > 0 {
		query = query.Where("pill_number <= ?", filter.MaxPillNumber)
	}
	if filter.DateFrom != nil {
		query = query.Where("pill_start_date >= ?", utcTime(*filter.DateFrom))
	}
	if filter.DateBefore != nil {
		query = query.Where("pill_start_date < ?", utcTime(*filter.DateBefore))
	}
	return query
}

func pillScheduleOrderClause(order models.PillScheduleOrder) string {
	switch order {
	case models.OrderByPillNumberDesc:
		return "pill_number DESC, id DESC"
	case models.OrderByDateAsc:
		return "pill_start_date ASC, id ASC"
	case models.OrderByDateDesc:
		return "pill_start_date DESC, id DESC"
	default:
		return "pill_number ASC, id ASC"
	}
}

func utcTime(value time.Time) time.Time {
	return value.UTC()
}

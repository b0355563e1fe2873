package db

import (
	"github.com/terraincognita07/pilltrack/internal/models"
	"gorm.io/gorm"
)

type CycleRepository struct {
	database *gorm.DB
}

func NewCycleRepository(database *gorm.DB) *CycleRepository {
	return &CycleRepository{database: database}
}

func (repo *CycleRepository) Create(cycle *models.MenstrualCycle) error {
	cycle.CycleStartDate = cycle.CycleStartDate.UTC()
	return repo.database.Create(cycle).Error
}

func (repo *CycleRepository) FindLatestByUser(userID uint) (models.MenstrualCycle, bool, error) {
	cycle := models.MenstrualCycle{}
	result := repo.database.
		Where("user_id = ?", userID).
		Order("cycle_start_date DESC, id DESC").
		Limit(1).
		Find(&cycle)
	if result.Error != nil {
		return models.MenstrualCycle{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.MenstrualCycle{}, false, nil
	}
	return cycle, true, nil
}

func (repo *CycleRepository) FindByUserAndID(userID uint, cycleID uint) (models.MenstrualCycle, bool, error) {
	cycle := models.MenstrualCycle{}
	result := repo.database.Where("id = ? AND user_id = ?", cycleID, userID).Limit(1).Find(&cycle)
	if result.Error != nil {
		return models.MenstrualCycle{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.MenstrualCycle{}, false, nil
	}
	return cycle, true, nil
}

// DeleteWithSchedules removes the cycle and every pill entry derived from it.
func (repo *CycleRepository) DeleteWithSchedules(userID uint, cycleID uint) (int64, error) {
	var deletedEntries int64
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND cycle_id = ?", userID, cycleID).Delete(&models.PillScheduleEntry{})
		if result.Error != nil {
			return result.Error
		}
		deletedEntries = result.RowsAffected
		return tx.Where("id = ? AND user_id = ?", cycleID, userID).Delete(&models.MenstrualCycle{}).Error
	})
	if err != nil {
		return 0, err
	}
	return deletedEntries, nil
}

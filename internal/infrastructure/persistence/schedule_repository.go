package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicore/backend/internal/domain/lending"
	"github.com/clinicore/backend/internal/infrastructure/persistence/models"
)

// GormLoanScheduleRepository implements lending.LoanScheduleRepository using GORM
type GormLoanScheduleRepository struct {
	db *gorm.DB
}

// NewGormLoanScheduleRepository creates a new GormLoanScheduleRepository
func NewGormLoanScheduleRepository(db *gorm.DB) *GormLoanScheduleRepository {
	return &GormLoanScheduleRepository{db: db}
}

// FindByID finds a schedule row by its ID
func (r *GormLoanScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.LoanSchedule, error) {
	var model models.LoanScheduleModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lending.ErrScheduleNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLoanID finds all schedule rows of a loan ordered by installment number
func (r *GormLoanScheduleRepository) FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]*lending.LoanSchedule, error) {
	var scheduleModels []models.LoanScheduleModel
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("installment_number ASC").
		Find(&scheduleModels).Error; err != nil {
		return nil, err
	}

	schedules := make([]*lending.LoanSchedule, len(scheduleModels))
	for i := range scheduleModels {
		schedules[i] = scheduleModels[i].ToDomain()
	}
	return schedules, nil
}

// FindByTransactionID finds the schedule row linked to a ledger transaction
func (r *GormLoanScheduleRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*lending.LoanSchedule, error) {
	var model models.LoanScheduleModel
	if err := r.db.WithContext(ctx).
		First(&model, "transaction_id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lending.ErrScheduleNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a schedule row
func (r *GormLoanScheduleRepository) Save(ctx context.Context, schedule *lending.LoanSchedule) error {
	model := models.LoanScheduleModelFromDomain(schedule)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveBatch inserts schedule rows in bulk
func (r *GormLoanScheduleRepository) SaveBatch(ctx context.Context, schedules []*lending.LoanSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	scheduleModels := make([]models.LoanScheduleModel, len(schedules))
	for i, s := range schedules {
		scheduleModels[i].FromDomain(s)
	}
	return r.db.WithContext(ctx).Create(&scheduleModels).Error
}

// DeleteByIDs removes schedule rows by their IDs
func (r *GormLoanScheduleRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Delete(&models.LoanScheduleModel{}, "id IN ?", ids).Error
}

var _ lending.LoanScheduleRepository = (*GormLoanScheduleRepository)(nil)

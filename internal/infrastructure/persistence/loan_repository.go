package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicore/backend/internal/domain/lending"
	"github.com/clinicore/backend/internal/infrastructure/persistence/models"
)

// loanSortFields contains allowed sort fields for loans
var loanSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"loan_number":   true,
	"borrower_name": true,
	"start_date":    true,
	"status":        true,
}

// GormLoanRepository implements lending.LoanRepository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// FindByID finds a loan by its ID
func (r *GormLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	var model models.LoanModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lending.ErrLoanNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a loan by its loan number
func (r *GormLoanRepository) FindByNumber(ctx context.Context, loanNumber string) (*lending.Loan, error) {
	var model models.LoanModel
	if err := r.db.WithContext(ctx).
		First(&model, "loan_number = ?", loanNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lending.ErrLoanNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a loan with a row-level lock. It must be called
// inside a transaction; the lock serializes all mutations of the loan and
// its schedule rows.
func (r *GormLoanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	var model models.LoanModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, lending.ErrLoanNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds loans matching the filter with pagination
func (r *GormLoanRepository) FindAll(ctx context.Context, filter lending.LoanFilter) ([]*lending.Loan, error) {
	var loanModels []models.LoanModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LoanModel{}), filter)

	query = query.Offset(filter.Offset()).Limit(filter.Limit())

	orderBy := ValidateSortField(filter.OrderBy, loanSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if err := query.Find(&loanModels).Error; err != nil {
		return nil, err
	}

	loans := make([]*lending.Loan, len(loanModels))
	for i := range loanModels {
		loans[i] = loanModels[i].ToDomain()
	}
	return loans, nil
}

// Count counts loans matching the filter
func (r *GormLoanRepository) Count(ctx context.Context, filter lending.LoanFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LoanModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a loan
func (r *GormLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	model := models.LoanModelFromDomain(loan)
	return r.db.WithContext(ctx).Save(model).Error
}

// NextLoanNumber generates the next loan number.
// Format: LN-YYYY-NNNNN, numbered sequentially within the year.
func (r *GormLoanRepository) NextLoanNumber(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("LN-%s-", year)

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.LoanModel{}).
		Select("loan_number").
		Where("loan_number LIKE ?", prefix+"%").
		Order("loan_number DESC").
		Limit(1).
		Pluck("loan_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

func (r *GormLoanRepository) applyFilter(query *gorm.DB, filter lending.LoanFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.BorrowerType != nil {
		query = query.Where("borrower_type = ?", *filter.BorrowerType)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("loan_number ILIKE ? OR borrower_name ILIKE ?", pattern, pattern)
	}
	return query
}

var _ lending.LoanRepository = (*GormLoanRepository)(nil)

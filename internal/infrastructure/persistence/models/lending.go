package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicore/backend/internal/domain/lending"
	"github.com/clinicore/backend/internal/domain/shared"
)

// LoanModel is the persistence model for the Loan aggregate root.
type LoanModel struct {
	AggregateModel
	LoanNumber       string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_loans_number"`
	BorrowerName     string                   `gorm:"type:varchar(200);not null;index"`
	BorrowerType     lending.BorrowerType     `gorm:"type:varchar(20);not null;index"`
	PrincipalAmount  decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	AnnualRatePct    decimal.Decimal          `gorm:"type:decimal(9,4);not null"`
	InterestType     lending.InterestType     `gorm:"type:varchar(20);not null"`
	Frequency        lending.PaymentFrequency `gorm:"type:varchar(20);not null"`
	StartDate        time.Time                `gorm:"not null"`
	InstallmentCount int                      `gorm:"not null"`
	Status           lending.LoanStatus       `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts the persistence model to a domain Loan entity.
func (m *LoanModel) ToDomain() *lending.Loan {
	return &lending.Loan{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		LoanNumber:       m.LoanNumber,
		BorrowerName:     m.BorrowerName,
		BorrowerType:     m.BorrowerType,
		PrincipalAmount:  m.PrincipalAmount,
		AnnualRatePct:    m.AnnualRatePct,
		InterestType:     m.InterestType,
		Frequency:        m.Frequency,
		StartDate:        m.StartDate,
		InstallmentCount: m.InstallmentCount,
		Status:           m.Status,
	}
}

// FromDomain populates the persistence model from a domain Loan entity.
func (m *LoanModel) FromDomain(l *lending.Loan) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.LoanNumber = l.LoanNumber
	m.BorrowerName = l.BorrowerName
	m.BorrowerType = l.BorrowerType
	m.PrincipalAmount = l.PrincipalAmount
	m.AnnualRatePct = l.AnnualRatePct
	m.InterestType = l.InterestType
	m.Frequency = l.Frequency
	m.StartDate = l.StartDate
	m.InstallmentCount = l.InstallmentCount
	m.Status = l.Status
}

// LoanModelFromDomain creates a new persistence model from a domain Loan.
func LoanModelFromDomain(l *lending.Loan) *LoanModel {
	m := &LoanModel{}
	m.FromDomain(l)
	return m
}

// LoanScheduleModel is the persistence model for a LoanSchedule installment row.
type LoanScheduleModel struct {
	BaseModel
	LoanID            uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_schedules_loan_installment,priority:1;index"`
	InstallmentNumber int                    `gorm:"not null;uniqueIndex:idx_schedules_loan_installment,priority:2"`
	DueDate           time.Time              `gorm:"not null;index"`
	ExpectedPrincipal decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	ExpectedInterest  decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	ExpectedAmount    decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Status            lending.ScheduleStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaidAmount        *decimal.Decimal       `gorm:"type:decimal(18,2)"`
	PaidDate          *time.Time
	TransactionID     *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_schedules_transaction"`
}

// TableName returns the table name for GORM
func (LoanScheduleModel) TableName() string {
	return "loan_schedules"
}

// ToDomain converts the persistence model to a domain LoanSchedule entity.
func (m *LoanScheduleModel) ToDomain() *lending.LoanSchedule {
	return &lending.LoanSchedule{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		LoanID:            m.LoanID,
		InstallmentNumber: m.InstallmentNumber,
		DueDate:           m.DueDate,
		ExpectedPrincipal: m.ExpectedPrincipal,
		ExpectedInterest:  m.ExpectedInterest,
		ExpectedAmount:    m.ExpectedAmount,
		Status:            m.Status,
		PaidAmount:        m.PaidAmount,
		PaidDate:          m.PaidDate,
		TransactionID:     m.TransactionID,
	}
}

// FromDomain populates the persistence model from a domain LoanSchedule entity.
func (m *LoanScheduleModel) FromDomain(s *lending.LoanSchedule) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.LoanID = s.LoanID
	m.InstallmentNumber = s.InstallmentNumber
	m.DueDate = s.DueDate
	m.ExpectedPrincipal = s.ExpectedPrincipal
	m.ExpectedInterest = s.ExpectedInterest
	m.ExpectedAmount = s.ExpectedAmount
	m.Status = s.Status
	m.PaidAmount = s.PaidAmount
	m.PaidDate = s.PaidDate
	m.TransactionID = s.TransactionID
}

// LoanScheduleModelFromDomain creates a new persistence model from a domain LoanSchedule.
func LoanScheduleModelFromDomain(s *lending.LoanSchedule) *LoanScheduleModel {
	m := &LoanScheduleModel{}
	m.FromDomain(s)
	return m
}

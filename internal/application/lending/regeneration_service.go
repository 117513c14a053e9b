package lending

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clinicore/backend/internal/domain/lending"
	"github.com/clinicore/backend/internal/domain/shared"
)

// RegenerationService rebuilds the open segment of a loan's schedule under
// new terms while preserving settled history.
type RegenerationService struct {
	uow            lending.UnitOfWork
	eventPublisher shared.EventPublisher
	clock          Clock
	logger         *zap.Logger
}

// RegenerationServiceConfig carries the dependencies for a RegenerationService
type RegenerationServiceConfig struct {
	UnitOfWork     lending.UnitOfWork
	EventPublisher shared.EventPublisher
	Clock          Clock
	Logger         *zap.Logger
}

// NewRegenerationService creates a new RegenerationService
func NewRegenerationService(config RegenerationServiceConfig) *RegenerationService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := config.Clock
	if clock == nil {
		clock = SystemClock()
	}
	return &RegenerationService{
		uow:            config.UnitOfWork,
		eventPublisher: config.EventPublisher,
		clock:          clock,
		logger:         logger,
	}
}

// Regenerate replaces the open installment rows of a loan atomically. Settled
// rows are never touched; the open segment is deleted and re-inserted under
// the effective terms. The loan row lock serializes this against concurrent
// payment registration.
func (s *RegenerationService) Regenerate(ctx context.Context, loanNumber string, req RegenerateRequest) (*LoanResponse, error) {
	var response *LoanResponse

	overrides := toOverrides(req)

	err := s.uow.Execute(ctx, func(ctx context.Context, repos lending.TransactionalRepositories) error {
		loan, err := repos.Loans().FindByNumber(ctx, loanNumber)
		if err != nil {
			return err
		}
		loan, err = repos.Loans().FindByIDForUpdate(ctx, loan.ID)
		if err != nil {
			return err
		}
		if !loan.IsActive() {
			return lending.NewInvalidTermsError(fmt.Sprintf(
				"Loan %s is %s and cannot be regenerated", loan.LoanNumber, loan.Status))
		}

		schedules, err := repos.Schedules().FindByLoanID(ctx, loan.ID)
		if err != nil {
			return err
		}

		plan, err := lending.PlanRegeneration(loan, schedules, overrides, req.EffectiveFromInstallment)
		if err != nil {
			return err
		}

		replacement, err := plan.BuildReplacementRows(loan.ID)
		if err != nil {
			return err
		}

		if err := repos.Schedules().DeleteByIDs(ctx, plan.OpenIDs); err != nil {
			return fmt.Errorf("failed to delete open schedules: %w", err)
		}
		if err := repos.Schedules().SaveBatch(ctx, replacement); err != nil {
			return fmt.Errorf("failed to save regenerated schedules: %w", err)
		}

		loan.ApplyTermOverrides(overrides, plan.TotalInstallments)
		if err := repos.Loans().Save(ctx, loan); err != nil {
			return fmt.Errorf("failed to save loan: %w", err)
		}

		s.publish(ctx, lending.NewLoanScheduleRegeneratedEvent(
			loan.ID, loan.LoanNumber, req.EffectiveFromInstallment,
			len(replacement), plan.TotalInstallments))

		all, err := repos.Schedules().FindByLoanID(ctx, loan.ID)
		if err != nil {
			return err
		}
		summary := lending.Summarize(all, s.clock.Now())
		resp := ToLoanDetailResponse(loan, all, summary)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule regenerated",
		zap.String("loan_number", loanNumber),
		zap.Int("effective_from", req.EffectiveFromInstallment),
		zap.Int("total_installments", response.InstallmentCount))

	return response, nil
}

func toOverrides(req RegenerateRequest) lending.RegenerationOverrides {
	overrides := lending.RegenerationOverrides{
		AnnualRatePct:    req.AnnualRatePct,
		InstallmentCount: req.InstallmentCount,
	}
	if req.InterestType != nil {
		it := lending.InterestType(*req.InterestType)
		overrides.InterestType = &it
	}
	if req.Frequency != nil {
		freq := lending.PaymentFrequency(*req.Frequency)
		overrides.Frequency = &freq
	}
	return overrides
}

func (s *RegenerationService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}

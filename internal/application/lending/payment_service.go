package lending

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicore/backend/internal/domain/lending"
	"github.com/clinicore/backend/internal/domain/shared"
)

// PaymentService links ledger transactions to installments and detaches them.
// Every mutation runs inside a transaction holding the loan's row lock, so
// concurrent payments and regenerations on the same loan are serialized.
type PaymentService struct {
	uow            lending.UnitOfWork
	eventPublisher shared.EventPublisher
	clock          Clock
	logger         *zap.Logger
}

// PaymentServiceConfig carries the dependencies for a PaymentService
type PaymentServiceConfig struct {
	UnitOfWork     lending.UnitOfWork
	EventPublisher shared.EventPublisher
	Clock          Clock
	Logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(config PaymentServiceConfig) *PaymentService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := config.Clock
	if clock == nil {
		clock = SystemClock()
	}
	return &PaymentService{
		uow:            config.UnitOfWork,
		eventPublisher: config.EventPublisher,
		clock:          clock,
		logger:         logger,
	}
}

// RegisterPayment links a transaction to an installment and recomputes the
// loan's lifecycle status. A transaction can back at most one installment
// across all loans.
func (s *PaymentService) RegisterPayment(ctx context.Context, scheduleID uuid.UUID, req RegisterPaymentRequest) (*ScheduleResponse, error) {
	var response *ScheduleResponse

	err := s.uow.Execute(ctx, func(ctx context.Context, repos lending.TransactionalRepositories) error {
		schedule, err := repos.Schedules().FindByID(ctx, scheduleID)
		if err != nil {
			return err
		}

		loan, err := repos.Loans().FindByIDForUpdate(ctx, schedule.LoanID)
		if err != nil {
			return err
		}

		// re-read under the lock; the pre-lock row may be stale
		schedule, err = repos.Schedules().FindByID(ctx, scheduleID)
		if err != nil {
			return err
		}

		existing, err := repos.Schedules().FindByTransactionID(ctx, req.TransactionID)
		if err != nil && !lending.HasCode(err, lending.CodeScheduleNotFound) {
			return err
		}
		if existing != nil {
			return lending.NewTransactionAlreadyLinkedError(fmt.Sprintf(
				"Transaction is already linked to installment %d of loan %s",
				existing.InstallmentNumber, existing.LoanID))
		}

		if err := schedule.RegisterPayment(req.TransactionID, req.PaidAmount, req.PaidDate); err != nil {
			return err
		}
		if err := repos.Schedules().Save(ctx, schedule); err != nil {
			return fmt.Errorf("failed to save schedule: %w", err)
		}

		if err := s.recomputeLoan(ctx, repos, loan); err != nil {
			return err
		}

		s.publish(ctx, lending.NewSchedulePaymentRegisteredEvent(
			schedule.ID, loan.ID, schedule.InstallmentNumber,
			req.TransactionID, req.PaidAmount, req.PaidDate))

		resp := ToScheduleResponse(schedule)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment registered",
		zap.String("schedule_id", scheduleID.String()),
		zap.String("transaction_id", req.TransactionID.String()),
		zap.String("status", response.Status))

	return response, nil
}

// UnlinkPayment detaches the linked transaction from an installment. It is
// idempotent; unlinking a row with no payment returns the row unchanged.
func (s *PaymentService) UnlinkPayment(ctx context.Context, scheduleID uuid.UUID) (*ScheduleResponse, error) {
	var response *ScheduleResponse

	err := s.uow.Execute(ctx, func(ctx context.Context, repos lending.TransactionalRepositories) error {
		schedule, err := repos.Schedules().FindByID(ctx, scheduleID)
		if err != nil {
			return err
		}

		loan, err := repos.Loans().FindByIDForUpdate(ctx, schedule.LoanID)
		if err != nil {
			return err
		}

		schedule, err = repos.Schedules().FindByID(ctx, scheduleID)
		if err != nil {
			return err
		}

		if schedule.UnlinkPayment(s.clock.Now()) {
			if err := repos.Schedules().Save(ctx, schedule); err != nil {
				return fmt.Errorf("failed to save schedule: %w", err)
			}
			if err := s.recomputeLoan(ctx, repos, loan); err != nil {
				return err
			}
			s.publish(ctx, lending.NewSchedulePaymentUnlinkedEvent(
				schedule.ID, loan.ID, schedule.InstallmentNumber))
		}

		resp := ToScheduleResponse(schedule)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment unlinked", zap.String("schedule_id", scheduleID.String()))
	return response, nil
}

// SkipInstallment marks an unpaid installment as skipped by operator decision
func (s *PaymentService) SkipInstallment(ctx context.Context, scheduleID uuid.UUID) (*ScheduleResponse, error) {
	var response *ScheduleResponse

	err := s.uow.Execute(ctx, func(ctx context.Context, repos lending.TransactionalRepositories) error {
		schedule, err := repos.Schedules().FindByID(ctx, scheduleID)
		if err != nil {
			return err
		}

		loan, err := repos.Loans().FindByIDForUpdate(ctx, schedule.LoanID)
		if err != nil {
			return err
		}

		schedule, err = repos.Schedules().FindByID(ctx, scheduleID)
		if err != nil {
			return err
		}

		if err := schedule.MarkSkipped(); err != nil {
			return err
		}
		if err := repos.Schedules().Save(ctx, schedule); err != nil {
			return fmt.Errorf("failed to save schedule: %w", err)
		}

		if err := s.recomputeLoan(ctx, repos, loan); err != nil {
			return err
		}

		resp := ToScheduleResponse(schedule)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Installment skipped", zap.String("schedule_id", scheduleID.String()))
	return response, nil
}

// recomputeLoan re-derives the loan lifecycle status from the full schedule
// set and saves the loan when it changed.
func (s *PaymentService) recomputeLoan(ctx context.Context, repos lending.TransactionalRepositories, loan *lending.Loan) error {
	schedules, err := repos.Schedules().FindByLoanID(ctx, loan.ID)
	if err != nil {
		return err
	}

	summary := lending.Summarize(schedules, s.clock.Now())
	if loan.ApplySummary(summary) {
		if err := repos.Loans().Save(ctx, loan); err != nil {
			return fmt.Errorf("failed to save loan: %w", err)
		}
		for _, event := range loan.GetDomainEvents() {
			s.publish(ctx, event)
		}
		loan.ClearDomainEvents()
	}
	return nil
}

func (s *PaymentService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}

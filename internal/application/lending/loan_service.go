package lending

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/clinicore/backend/internal/domain/lending"
	"github.com/clinicore/backend/internal/domain/shared"
)

// LoanService handles loan origination and read operations
type LoanService struct {
	uow            lending.UnitOfWork
	loanRepo       lending.LoanRepository
	scheduleRepo   lending.LoanScheduleRepository
	generator      *lending.ScheduleGenerator
	eventPublisher shared.EventPublisher
	clock          Clock
	logger         *zap.Logger
}

// LoanServiceConfig carries the dependencies for a LoanService
type LoanServiceConfig struct {
	UnitOfWork     lending.UnitOfWork
	LoanRepo       lending.LoanRepository
	ScheduleRepo   lending.LoanScheduleRepository
	EventPublisher shared.EventPublisher
	Clock          Clock
	Logger         *zap.Logger
}

// NewLoanService creates a new LoanService
func NewLoanService(config LoanServiceConfig) *LoanService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := config.Clock
	if clock == nil {
		clock = SystemClock()
	}
	return &LoanService{
		uow:            config.UnitOfWork,
		loanRepo:       config.LoanRepo,
		scheduleRepo:   config.ScheduleRepo,
		generator:      lending.NewScheduleGenerator(),
		eventPublisher: config.EventPublisher,
		clock:          clock,
		logger:         logger,
	}
}

// Create originates a loan and generates its full installment schedule in one
// transaction.
func (s *LoanService) Create(ctx context.Context, req CreateLoanRequest) (*LoanResponse, error) {
	var response *LoanResponse

	err := s.uow.Execute(ctx, func(ctx context.Context, repos lending.TransactionalRepositories) error {
		loanNumber, err := repos.Loans().NextLoanNumber(ctx)
		if err != nil {
			return fmt.Errorf("failed to allocate loan number: %w", err)
		}

		loan, err := lending.NewLoan(
			loanNumber,
			req.BorrowerName,
			lending.BorrowerType(req.BorrowerType),
			req.PrincipalAmount,
			req.AnnualRatePct,
			lending.InterestType(req.InterestType),
			lending.PaymentFrequency(req.Frequency),
			req.StartDate,
			req.InstallmentCount,
		)
		if err != nil {
			return err
		}

		schedules, err := s.generator.GenerateForLoan(loan)
		if err != nil {
			return err
		}

		if err := repos.Loans().Save(ctx, loan); err != nil {
			return fmt.Errorf("failed to save loan: %w", err)
		}
		if err := repos.Schedules().SaveBatch(ctx, schedules); err != nil {
			return fmt.Errorf("failed to save schedules: %w", err)
		}

		s.publishEvents(ctx, loan)

		summary := lending.Summarize(schedules, s.clock.Now())
		resp := ToLoanDetailResponse(loan, schedules, summary)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan created",
		zap.String("loan_number", response.LoanNumber),
		zap.String("borrower", response.BorrowerName),
		zap.Int("installments", response.InstallmentCount))

	return response, nil
}

// GetByNumber returns a loan with its schedule rows and derived summary
func (s *LoanService) GetByNumber(ctx context.Context, loanNumber string) (*LoanResponse, error) {
	loan, err := s.loanRepo.FindByNumber(ctx, loanNumber)
	if err != nil {
		return nil, err
	}

	schedules, err := s.scheduleRepo.FindByLoanID(ctx, loan.ID)
	if err != nil {
		return nil, err
	}

	summary := lending.Summarize(schedules, s.clock.Now())
	resp := ToLoanDetailResponse(loan, schedules, summary)
	return &resp, nil
}

// List returns loans matching the filter, each with its derived summary
func (s *LoanService) List(ctx context.Context, filter LoanListFilter) (shared.Paginated[LoanListItemResponse], error) {
	var empty shared.Paginated[LoanListItemResponse]

	domainFilter := filter.ToDomainFilter()
	loans, err := s.loanRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return empty, err
	}
	total, err := s.loanRepo.Count(ctx, domainFilter)
	if err != nil {
		return empty, err
	}

	now := s.clock.Now()
	items := make([]LoanListItemResponse, 0, len(loans))
	for _, loan := range loans {
		schedules, err := s.scheduleRepo.FindByLoanID(ctx, loan.ID)
		if err != nil {
			return empty, err
		}
		items = append(items, ToLoanListItemResponse(loan, lending.Summarize(schedules, now)))
	}

	return shared.NewPaginated(items, total, domainFilter.Page, domainFilter.Limit()), nil
}

// MarkDefaulted flags a loan as defaulted. The schedule rows are left as
// they stand; payments on defaulted loans are handled outside the system.
func (s *LoanService) MarkDefaulted(ctx context.Context, loanNumber string) (*LoanResponse, error) {
	var response *LoanResponse

	err := s.uow.Execute(ctx, func(ctx context.Context, repos lending.TransactionalRepositories) error {
		loan, err := repos.Loans().FindByNumber(ctx, loanNumber)
		if err != nil {
			return err
		}
		loan, err = repos.Loans().FindByIDForUpdate(ctx, loan.ID)
		if err != nil {
			return err
		}

		if err := loan.MarkDefaulted(); err != nil {
			return err
		}
		if err := repos.Loans().Save(ctx, loan); err != nil {
			return fmt.Errorf("failed to save loan: %w", err)
		}

		s.publishEvents(ctx, loan)

		resp := ToLoanResponse(loan)
		response = &resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan marked defaulted", zap.String("loan_number", loanNumber))
	return response, nil
}

func (s *LoanService) publishEvents(ctx context.Context, loan *lending.Loan) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range loan.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	loan.ClearDomainEvents()
}

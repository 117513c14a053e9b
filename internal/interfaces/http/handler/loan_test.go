package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	lendingapp "github.com/clinicore/backend/internal/application/lending"
	"github.com/clinicore/backend/internal/domain/lending"
	"github.com/clinicore/backend/internal/domain/shared/valueobject"
	"github.com/clinicore/backend/internal/interfaces/http/dto"
)

// MockLoanRepository is a mock implementation of lending.LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByNumber(ctx context.Context, loanNumber string) (*lending.Loan, error) {
	args := m.Called(ctx, loanNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindAll(ctx context.Context, filter lending.LoanFilter) ([]*lending.Loan, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*lending.Loan), args.Error(1)
}

func (m *MockLoanRepository) Count(ctx context.Context, filter lending.LoanFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) NextLoanNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockScheduleRepository is a mock implementation of lending.LoanScheduleRepository
type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.LoanSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.LoanSchedule), args.Error(1)
}

func (m *MockScheduleRepository) FindByLoanID(ctx context.Context, loanID uuid.UUID) ([]*lending.LoanSchedule, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).([]*lending.LoanSchedule), args.Error(1)
}

func (m *MockScheduleRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) (*lending.LoanSchedule, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lending.LoanSchedule), args.Error(1)
}

func (m *MockScheduleRepository) Save(ctx context.Context, schedule *lending.LoanSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}

func (m *MockScheduleRepository) SaveBatch(ctx context.Context, schedules []*lending.LoanSchedule) error {
	args := m.Called(ctx, schedules)
	return args.Error(0)
}

func (m *MockScheduleRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// stubRepos satisfies lending.TransactionalRepositories over the mocks
type stubRepos struct {
	loans     lending.LoanRepository
	schedules lending.LoanScheduleRepository
}

func (r stubRepos) Loans() lending.LoanRepository             { return r.loans }
func (r stubRepos) Schedules() lending.LoanScheduleRepository { return r.schedules }

// stubUnitOfWork runs the callback directly against the stub repositories
type stubUnitOfWork struct {
	repos stubRepos
}

func (u stubUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos lending.TransactionalRepositories) error) error {
	return fn(ctx, u.repos)
}

// Test setup helpers

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupLoanHandler(loanRepo *MockLoanRepository, scheduleRepo *MockScheduleRepository) *LoanHandler {
	uow := stubUnitOfWork{repos: stubRepos{loans: loanRepo, schedules: scheduleRepo}}
	loanService := lendingapp.NewLoanService(lendingapp.LoanServiceConfig{
		UnitOfWork:   uow,
		LoanRepo:     loanRepo,
		ScheduleRepo: scheduleRepo,
	})
	paymentService := lendingapp.NewPaymentService(lendingapp.PaymentServiceConfig{
		UnitOfWork: uow,
	})
	regenerationService := lendingapp.NewRegenerationService(lendingapp.RegenerationServiceConfig{
		UnitOfWork: uow,
	})
	return NewLoanHandler(loanService, paymentService, regenerationService)
}

func createTestLoan(t *testing.T) *lending.Loan {
	t.Helper()
	loan, err := lending.NewLoan(
		"LN-2026-00001",
		"Riverside Family Clinic",
		lending.BorrowerTypeCompany,
		decimal.NewFromInt(120000),
		decimal.NewFromInt(12),
		lending.InterestTypeSimple,
		lending.FrequencyMonthly,
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		12,
	)
	if err != nil {
		t.Fatalf("creating test loan: %v", err)
	}
	loan.ClearDomainEvents()
	return loan
}

func createTestSchedule(loanID uuid.UUID, installment int) *lending.LoanSchedule {
	return lending.NewLoanSchedule(
		loanID,
		installment,
		time.Date(2026, time.Month(1+installment), 15, 0, 0, 0, 0, time.UTC),
		lending.InstallmentAmounts{
			Principal: valueobject.NewMoneyUSD(decimal.NewFromInt(10000)),
			Interest:  valueobject.NewMoneyUSD(decimal.NewFromInt(1200)),
		},
	)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return resp
}

// Tests

func TestLoanHandler_Create_Success(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	loanRepo.On("NextLoanNumber", mock.Anything).Return("LN-2026-00001", nil)
	loanRepo.On("Save", mock.Anything, mock.AnythingOfType("*lending.Loan")).Return(nil)
	scheduleRepo.On("SaveBatch", mock.Anything, mock.AnythingOfType("[]*lending.LoanSchedule")).Return(nil)

	router := setupTestRouter()
	router.POST("/loans", handler.Create)

	reqBody := lendingapp.CreateLoanRequest{
		BorrowerName:     "Riverside Family Clinic",
		BorrowerType:     "COMPANY",
		PrincipalAmount:  decimal.NewFromInt(120000),
		AnnualRatePct:    decimal.NewFromInt(12),
		InterestType:     "SIMPLE",
		Frequency:        "MONTHLY",
		StartDate:        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		InstallmentCount: 12,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	loanRepo.AssertExpectations(t)
	scheduleRepo.AssertExpectations(t)
}

func TestLoanHandler_Create_InvalidTerms(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	loanRepo.On("NextLoanNumber", mock.Anything).Return("LN-2026-00001", nil)

	router := setupTestRouter()
	router.POST("/loans", handler.Create)

	// negative principal passes binding but fails domain validation
	reqBody := lendingapp.CreateLoanRequest{
		BorrowerName:     "Riverside Family Clinic",
		BorrowerType:     "COMPANY",
		PrincipalAmount:  decimal.NewFromInt(-500),
		AnnualRatePct:    decimal.NewFromInt(12),
		InterestType:     "SIMPLE",
		Frequency:        "MONTHLY",
		StartDate:        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		InstallmentCount: 12,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_TERMS", resp.Error.Code)
}

func TestLoanHandler_Create_InvalidJSON(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	router := setupTestRouter()
	router.POST("/loans", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoanHandler_GetByNumber_Success(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	loan := createTestLoan(t)
	schedules := []*lending.LoanSchedule{
		createTestSchedule(loan.ID, 1),
		createTestSchedule(loan.ID, 2),
	}

	loanRepo.On("FindByNumber", mock.Anything, "LN-2026-00001").Return(loan, nil)
	scheduleRepo.On("FindByLoanID", mock.Anything, loan.ID).Return(schedules, nil)

	router := setupTestRouter()
	router.GET("/loans/:number", handler.GetByNumber)

	req := httptest.NewRequest(http.MethodGet, "/loans/LN-2026-00001", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	loanRepo.AssertExpectations(t)
}

func TestLoanHandler_GetByNumber_NotFound(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	loanRepo.On("FindByNumber", mock.Anything, "LN-2026-09999").Return(nil, lending.ErrLoanNotFound)

	router := setupTestRouter()
	router.GET("/loans/:number", handler.GetByNumber)

	req := httptest.NewRequest(http.MethodGet, "/loans/LN-2026-09999", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "LOAN_NOT_FOUND", resp.Error.Code)
}

func TestLoanHandler_List_Success(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	loan := createTestLoan(t)
	loanRepo.On("FindAll", mock.Anything, mock.AnythingOfType("lending.LoanFilter")).
		Return([]*lending.Loan{loan}, nil)
	loanRepo.On("Count", mock.Anything, mock.AnythingOfType("lending.LoanFilter")).
		Return(int64(1), nil)
	scheduleRepo.On("FindByLoanID", mock.Anything, loan.ID).
		Return([]*lending.LoanSchedule{createTestSchedule(loan.ID, 1)}, nil)

	router := setupTestRouter()
	router.GET("/loans", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/loans?status=ACTIVE&page=1&page_size=20", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	loanRepo.AssertExpectations(t)
}

func TestLoanHandler_List_InvalidStatus(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	router := setupTestRouter()
	router.GET("/loans", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/loans?status=BOGUS", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoanHandler_RegisterPayment_Success(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	loan := createTestLoan(t)
	schedule := createTestSchedule(loan.ID, 1)
	txID := uuid.New()

	scheduleRepo.On("FindByID", mock.Anything, schedule.ID).Return(schedule, nil)
	loanRepo.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
	scheduleRepo.On("FindByTransactionID", mock.Anything, txID).Return(nil, lending.ErrScheduleNotFound)
	scheduleRepo.On("Save", mock.Anything, mock.AnythingOfType("*lending.LoanSchedule")).Return(nil)
	scheduleRepo.On("FindByLoanID", mock.Anything, loan.ID).
		Return([]*lending.LoanSchedule{schedule}, nil)
	loanRepo.On("Save", mock.Anything, mock.AnythingOfType("*lending.Loan")).Return(nil)

	router := setupTestRouter()
	router.POST("/schedules/:id/payment", handler.RegisterPayment)

	reqBody := lendingapp.RegisterPaymentRequest{
		TransactionID: txID,
		PaidAmount:    decimal.NewFromInt(11200),
		PaidDate:      time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/schedules/"+schedule.ID.String()+"/payment", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	scheduleRepo.AssertExpectations(t)
}

func TestLoanHandler_RegisterPayment_TransactionAlreadyLinked(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	loan := createTestLoan(t)
	schedule := createTestSchedule(loan.ID, 1)
	other := createTestSchedule(loan.ID, 2)
	txID := uuid.New()

	scheduleRepo.On("FindByID", mock.Anything, schedule.ID).Return(schedule, nil)
	loanRepo.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
	scheduleRepo.On("FindByTransactionID", mock.Anything, txID).Return(other, nil)

	router := setupTestRouter()
	router.POST("/schedules/:id/payment", handler.RegisterPayment)

	reqBody := lendingapp.RegisterPaymentRequest{
		TransactionID: txID,
		PaidAmount:    decimal.NewFromInt(11200),
		PaidDate:      time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/schedules/"+schedule.ID.String()+"/payment", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "TRANSACTION_ALREADY_LINKED", resp.Error.Code)
}

func TestLoanHandler_RegisterPayment_InvalidScheduleID(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	router := setupTestRouter()
	router.POST("/schedules/:id/payment", handler.RegisterPayment)

	req := httptest.NewRequest(http.MethodPost, "/schedules/not-a-uuid/payment", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoanHandler_UnlinkPayment_NotFound(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	scheduleID := uuid.New()
	scheduleRepo.On("FindByID", mock.Anything, scheduleID).Return(nil, lending.ErrScheduleNotFound)

	router := setupTestRouter()
	router.DELETE("/schedules/:id/payment", handler.UnlinkPayment)

	req := httptest.NewRequest(http.MethodDelete, "/schedules/"+scheduleID.String()+"/payment", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "SCHEDULE_NOT_FOUND", resp.Error.Code)
}

func TestLoanHandler_Regenerate_Success(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	loan := createTestLoan(t)
	schedules := []*lending.LoanSchedule{
		createTestSchedule(loan.ID, 1),
		createTestSchedule(loan.ID, 2),
	}

	loanRepo.On("FindByNumber", mock.Anything, "LN-2026-00001").Return(loan, nil)
	loanRepo.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
	scheduleRepo.On("FindByLoanID", mock.Anything, loan.ID).Return(schedules, nil)
	scheduleRepo.On("DeleteByIDs", mock.Anything, mock.AnythingOfType("[]uuid.UUID")).Return(nil)
	scheduleRepo.On("SaveBatch", mock.Anything, mock.AnythingOfType("[]*lending.LoanSchedule")).Return(nil)
	loanRepo.On("Save", mock.Anything, mock.AnythingOfType("*lending.Loan")).Return(nil)

	router := setupTestRouter()
	router.POST("/loans/:number/regenerate", handler.Regenerate)

	newRate := decimal.NewFromInt(9)
	reqBody := lendingapp.RegenerateRequest{
		EffectiveFromInstallment: 2,
		AnnualRatePct:            &newRate,
	}
	body, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/loans/LN-2026-00001/regenerate", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	loanRepo.AssertExpectations(t)
	scheduleRepo.AssertExpectations(t)
}

func TestLoanHandler_MarkDefaulted_Success(t *testing.T) {
	loanRepo := new(MockLoanRepository)
	scheduleRepo := new(MockScheduleRepository)
	handler := setupLoanHandler(loanRepo, scheduleRepo)

	loan := createTestLoan(t)
	loanRepo.On("FindByNumber", mock.Anything, "LN-2026-00001").Return(loan, nil)
	loanRepo.On("FindByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil)
	loanRepo.On("Save", mock.Anything, mock.AnythingOfType("*lending.Loan")).Return(nil)

	router := setupTestRouter()
	router.POST("/loans/:number/default", handler.MarkDefaulted)

	req := httptest.NewRequest(http.MethodPost, "/loans/LN-2026-00001/default", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	loanRepo.AssertExpectations(t)
}

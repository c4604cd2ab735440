package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/lottery-system/internal/middleware"
	"github.com/mmeshcher/lottery-system/internal/model"
	"github.com/mmeshcher/lottery-system/internal/repository"
	"github.com/mmeshcher/lottery-system/internal/service"
)

type stubService struct {
	registerUser *model.User
	registerErr  error

	authUser *model.User
	authErr  error

	getUser    *model.User
	getUserErr error

	balanceResp *model.Balance
	balanceErr  error

	depositResp *model.Transaction
	depositErr  error

	withdrawResp *model.Transaction
	withdrawErr  error

	transactionsResp []model.Transaction
	transactionsErr  error

	plansResp []model.LotteryPlan
	plansErr  error

	planResp *model.LotteryPlan
	planErr  error

	purchaseResp []model.Token
	purchaseErr  error

	tokensResp []model.Token
	tokensErr  error

	settleErr error
}

func (s *stubService) RegisterUser(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	return s.registerUser, s.registerErr
}

func (s *stubService) AuthenticateUser(ctx context.Context, login, password string) (*model.User, error) {
	return s.authUser, s.authErr
}

func (s *stubService) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.getUser, s.getUserErr
}

func (s *stubService) GetBalance(ctx context.Context, userID string) (*model.Balance, error) {
	return s.balanceResp, s.balanceErr
}

func (s *stubService) CreateDeposit(ctx context.Context, userID string, in service.DepositInput) (*model.Transaction, error) {
	return s.depositResp, s.depositErr
}

func (s *stubService) CreateWithdrawal(ctx context.Context, userID string, in service.WithdrawalInput) (*model.Transaction, error) {
	return s.withdrawResp, s.withdrawErr
}

func (s *stubService) GetTransactionsByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	return s.transactionsResp, s.transactionsErr
}

func (s *stubService) ListPlans(ctx context.Context, onlyActive bool) ([]model.LotteryPlan, error) {
	return s.plansResp, s.plansErr
}

func (s *stubService) GetPlan(ctx context.Context, id string) (*model.LotteryPlan, error) {
	return s.planResp, s.planErr
}

func (s *stubService) PurchaseTokens(ctx context.Context, userID, planID string, numbers []int64) ([]model.Token, error) {
	return s.purchaseResp, s.purchaseErr
}

func (s *stubService) GetTokensByUser(ctx context.Context, userID string) ([]model.Token, error) {
	return s.tokensResp, s.tokensErr
}

func (s *stubService) GetSoldNumbers(ctx context.Context, planID string) ([]int64, error) {
	return nil, nil
}

func (s *stubService) GetWinners(ctx context.Context, limit int) ([]model.Token, error) {
	return s.tokensResp, s.tokensErr
}

func (s *stubService) GetReferralSummary(ctx context.Context, userID string) (*service.ReferralSummary, error) {
	return &service.ReferralSummary{}, nil
}

func (s *stubService) ListPaymentMethods(ctx context.Context, onlyActive bool) ([]model.PaymentMethod, error) {
	return nil, nil
}

func (s *stubService) GetSupportLink(ctx context.Context) (string, error) { return "", nil }

func (s *stubService) ListUsers(ctx context.Context) ([]model.User, error) { return nil, nil }
func (s *stubService) DeleteUser(ctx context.Context, id string) error     { return nil }

func (s *stubService) CreatePlan(ctx context.Context, p *model.LotteryPlan) error { return nil }
func (s *stubService) UpdatePlan(ctx context.Context, p *model.LotteryPlan) error { return nil }
func (s *stubService) DeletePlan(ctx context.Context, id string) error            { return nil }

func (s *stubService) ListTokensByPlan(ctx context.Context, planID string) ([]model.Token, error) {
	return s.tokensResp, s.tokensErr
}

func (s *stubService) ListTransactions(ctx context.Context, status model.TransactionStatus) ([]model.Transaction, error) {
	return s.transactionsResp, s.transactionsErr
}

func (s *stubService) ApproveTransaction(ctx context.Context, id string) error { return s.settleErr }
func (s *stubService) RejectTransaction(ctx context.Context, id string) error  { return s.settleErr }

func (s *stubService) CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	return nil
}

func (s *stubService) UpdatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	return nil
}

func (s *stubService) DeletePaymentMethod(ctx context.Context, id string) error { return nil }

func (s *stubService) UpdateSupportContact(ctx context.Context, contact string) error { return nil }

func (s *stubService) RunDraw(ctx context.Context, planID string) (*model.Draw, error) {
	return nil, nil
}

func (s *stubService) ListDraws(ctx context.Context) ([]model.Draw, error) { return nil, nil }

func newTestHandler(t *testing.T, svc Service) *Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	auth := middleware.NewAuthMiddleware("test-secret")

	return NewHandler(svc, logger, auth)
}

func authCookie(h *Handler, userID string) *http.Cookie {
	rec := httptest.NewRecorder()
	h.authMiddleware.SetAuthCookie(rec, userID)
	return rec.Result().Cookies()[0]
}

func TestRegister_Success(t *testing.T) {
	svc := &stubService{
		registerUser: &model.User{
			ID:           "user-42",
			Login:        "user",
			Role:         model.RoleUser,
			ReferralCode: "LUCKY1234",
		},
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(registerRequest{
		Login:    "user",
		Password: "pass",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if len(res.Cookies()) == 0 {
		t.Fatalf("registration must set the auth cookie")
	}

	var resp userResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ReferralCode != "LUCKY1234" {
		t.Fatalf("referralCode = %q, want LUCKY1234", resp.ReferralCode)
	}
}

func TestRegister_Conflict(t *testing.T) {
	svc := &stubService{
		registerErr: repository.ErrUserExists,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(registerRequest{
		Login:    "user",
		Password: "pass",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusConflict)
	}
}

func TestRegister_UnknownReferralCode(t *testing.T) {
	svc := &stubService{
		registerErr: repository.ErrReferralCodeNotFound,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(registerRequest{
		Login:        "user",
		Password:     "pass",
		ReferralCode: "LUCKY0000",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestLogin_UnauthorizedOnInvalidCredentials(t *testing.T) {
	svc := &stubService{
		authErr: service.ErrInvalidCredentials,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(credentialsRequest{
		Login:    "user",
		Password: "wrong",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}
}

func TestGetTokens_NoContent(t *testing.T) {
	svc := &stubService{
		tokensResp: []model.Token{},
	}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/user/tokens", nil)
	req.AddCookie(authCookie(h, "user-1"))
	rec := httptest.NewRecorder()

	handlerWithAuth := h.authMiddleware.Middleware(http.HandlerFunc(h.GetTokens))
	handlerWithAuth.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNoContent)
	}
}

func TestPurchaseTokens_InsufficientBalance(t *testing.T) {
	svc := &stubService{
		purchaseErr: repository.ErrInsufficientBalance,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(purchaseRequest{
		PlanID:  "plan-1",
		Numbers: []int64{1, 2},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/tokens", bytes.NewReader(body))
	req.AddCookie(authCookie(h, "user-1"))
	rec := httptest.NewRecorder()

	handlerWithAuth := h.authMiddleware.Middleware(http.HandlerFunc(h.PurchaseTokens))
	handlerWithAuth.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusPaymentRequired)
	}
}

func TestPurchaseTokens_TakenNumber(t *testing.T) {
	svc := &stubService{
		purchaseErr: repository.ErrTokenTaken,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(purchaseRequest{
		PlanID:  "plan-1",
		Numbers: []int64{7},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/tokens", bytes.NewReader(body))
	req.AddCookie(authCookie(h, "user-1"))
	rec := httptest.NewRecorder()

	handlerWithAuth := h.authMiddleware.Middleware(http.HandlerFunc(h.PurchaseTokens))
	handlerWithAuth.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusConflict)
	}
}

func TestDeposit_Created(t *testing.T) {
	svc := &stubService{
		depositResp: &model.Transaction{
			ID:        "tx-1",
			Type:      model.TransactionDeposit,
			Amount:    1000,
			Fee:       100,
			NetAmount: 900,
			Status:    model.TransactionStatusPending,
		},
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(depositRequest{
		Amount:     1000,
		Method:     "EasyPaisa",
		ProofImage: "proof.png",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/deposit", bytes.NewReader(body))
	req.AddCookie(authCookie(h, "user-1"))
	rec := httptest.NewRecorder()

	handlerWithAuth := h.authMiddleware.Middleware(http.HandlerFunc(h.Deposit))
	handlerWithAuth.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusCreated)
	}

	var resp transactionResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Charges != 100 || resp.NetAmount != 900 {
		t.Fatalf("charges/netAmount = %d/%d, want 100/900", resp.Charges, resp.NetAmount)
	}
	if resp.Status != string(model.TransactionStatusPending) {
		t.Fatalf("status = %q, want PENDING", resp.Status)
	}
}

func TestWithdraw_InvalidAccountNumber(t *testing.T) {
	h := newTestHandler(t, &stubService{})

	body, _ := json.Marshal(withdrawRequest{
		Amount:        1000,
		Method:        "EasyPaisa",
		AccountNumber: "12345",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/withdraw", bytes.NewReader(body))
	req.AddCookie(authCookie(h, "user-1"))
	rec := httptest.NewRecorder()

	handlerWithAuth := h.authMiddleware.Middleware(http.HandlerFunc(h.Withdraw))
	handlerWithAuth.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnprocessableEntity)
	}
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	svc := &stubService{
		withdrawErr: repository.ErrInsufficientBalance,
	}
	h := newTestHandler(t, svc)

	body, _ := json.Marshal(withdrawRequest{
		Amount:        5000,
		Method:        "EasyPaisa",
		AccountNumber: "03459876543",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/user/withdraw", bytes.NewReader(body))
	req.AddCookie(authCookie(h, "user-1"))
	rec := httptest.NewRecorder()

	handlerWithAuth := h.authMiddleware.Middleware(http.HandlerFunc(h.Withdraw))
	handlerWithAuth.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusPaymentRequired)
	}
}

func TestAdmin_ForbiddenForRegularUser(t *testing.T) {
	svc := &stubService{
		getUser: &model.User{ID: "user-1", Role: model.RoleUser},
	}
	h := newTestHandler(t, svc)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.AddCookie(authCookie(h, "user-1"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusForbidden)
	}
}

func TestAdminApprove_ConflictWhenAlreadySettled(t *testing.T) {
	svc := &stubService{
		getUser:   &model.User{ID: "admin-1", Role: model.RoleAdmin},
		settleErr: repository.ErrTransactionNotPending,
	}
	h := newTestHandler(t, svc)
	router := h.SetupRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/transactions/tx-1/approve", nil)
	req.AddCookie(authCookie(h, "admin-1"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusConflict)
	}
}

func TestAdminCreatePlan_RejectsInvalid(t *testing.T) {
	svc := &stubService{
		getUser: &model.User{ID: "admin-1", Role: model.RoleAdmin},
	}
	h := newTestHandler(t, svc)
	router := h.SetupRouter()

	body, _ := json.Marshal(planRequest{
		Name:         "Bad plan",
		TokenPrice:   100,
		TotalTokens:  10,
		TotalWinners: 20,
		DrawCycle:    string(model.DrawCycleWeekly),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/plans", bytes.NewReader(body))
	req.AddCookie(authCookie(h, "admin-1"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	res := rec.Result()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnprocessableEntity)
	}
}

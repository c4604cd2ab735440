// Package handler содержит HTTP-обработчики API лотерейного сервиса.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/lottery-system/internal/middleware"
	"github.com/mmeshcher/lottery-system/internal/model"
	"github.com/mmeshcher/lottery-system/internal/repository"
	"github.com/mmeshcher/lottery-system/internal/service"
	"github.com/mmeshcher/lottery-system/internal/validation"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	RegisterUser(ctx context.Context, in service.RegisterInput) (*model.User, error)
	AuthenticateUser(ctx context.Context, login, password string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetBalance(ctx context.Context, userID string) (*model.Balance, error)

	CreateDeposit(ctx context.Context, userID string, in service.DepositInput) (*model.Transaction, error)
	CreateWithdrawal(ctx context.Context, userID string, in service.WithdrawalInput) (*model.Transaction, error)
	GetTransactionsByUser(ctx context.Context, userID string) ([]model.Transaction, error)

	ListPlans(ctx context.Context, onlyActive bool) ([]model.LotteryPlan, error)
	GetPlan(ctx context.Context, id string) (*model.LotteryPlan, error)
	PurchaseTokens(ctx context.Context, userID, planID string, numbers []int64) ([]model.Token, error)
	GetTokensByUser(ctx context.Context, userID string) ([]model.Token, error)
	GetSoldNumbers(ctx context.Context, planID string) ([]int64, error)
	GetWinners(ctx context.Context, limit int) ([]model.Token, error)

	GetReferralSummary(ctx context.Context, userID string) (*service.ReferralSummary, error)
	ListPaymentMethods(ctx context.Context, onlyActive bool) ([]model.PaymentMethod, error)
	GetSupportLink(ctx context.Context) (string, error)

	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id string) error
	CreatePlan(ctx context.Context, p *model.LotteryPlan) error
	UpdatePlan(ctx context.Context, p *model.LotteryPlan) error
	DeletePlan(ctx context.Context, id string) error
	ListTokensByPlan(ctx context.Context, planID string) ([]model.Token, error)
	ListTransactions(ctx context.Context, status model.TransactionStatus) ([]model.Transaction, error)
	ApproveTransaction(ctx context.Context, id string) error
	RejectTransaction(ctx context.Context, id string) error
	CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error
	UpdatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, id string) error
	UpdateSupportContact(ctx context.Context, contact string) error
	RunDraw(ctx context.Context, planID string) (*model.Draw, error)
	ListDraws(ctx context.Context) ([]model.Draw, error)
}

// Handler реализует HTTP-обработчики API лотерейного сервиса.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type registerRequest struct {
	Login        string `json:"login"`
	Password     string `json:"password"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Mobile       string `json:"mobile"`
	ReferralCode string `json:"referralCode"`
}

type userResponse struct {
	ID             string `json:"id"`
	Login          string `json:"login"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Mobile         string `json:"mobile"`
	Role           string `json:"role"`
	WalletBalance  int64  `json:"walletBalance"`
	ReferralCode   string `json:"referralCode"`
	ReferralsCount int64  `json:"referralsCount"`
	TotalWinnings  int64  `json:"totalWinnings"`
	JoinDate       string `json:"joinDate"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Login:          u.Login,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Mobile:         u.Mobile,
		Role:           string(u.Role),
		WalletBalance:  u.WalletBalance,
		ReferralCode:   u.ReferralCode,
		ReferralsCount: u.ReferralsCount,
		TotalWinnings:  u.TotalWinnings,
		JoinDate:       u.CreatedAt.Format(time.RFC3339),
	}
}

// Register обрабатывает регистрацию нового пользователя.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Password == "" || !validation.IsValidUsername(req.Login) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	u, err := h.service.RegisterUser(r.Context(), service.RegisterInput{
		Login:        req.Login,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Mobile:       req.Mobile,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserExists):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		case errors.Is(err, repository.ErrReferralCodeNotFound):
			http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		default:
			h.logger.Error("register user error", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	h.authMiddleware.SetAuthCookie(w, u.ID)
	h.writeJSON(w, toUserResponse(u))
}

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login выполняет аутентификацию пользователя и установку cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Login == "" || req.Password == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	u, err := h.service.AuthenticateUser(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("login user error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.authMiddleware.SetAuthCookie(w, u.ID)
	h.writeJSON(w, toUserResponse(u))
}

// Logout сбрасывает cookie авторизации.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authMiddleware.ClearAuthCookie(w)
	w.WriteHeader(http.StatusOK)
}

// Me возвращает профиль текущего пользователя.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		h.logger.Error("get user error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, toUserResponse(u))
}

// GetBalance возвращает баланс текущего пользователя.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		h.logger.Error("get balance error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, balance)
}

type planResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	TokenPrice          int64  `json:"tokenPrice"`
	TotalTokens         int64  `json:"totalTokens"`
	TotalWinners        int64  `json:"totalWinners"`
	PrizePerWinner      int64  `json:"prizePerWinner"`
	PrizeName           string `json:"prizeName,omitempty"`
	DrawCycle           string `json:"drawCycle"`
	DrawDay             string `json:"drawDay"`
	DrawTime            string `json:"drawTime"`
	ReferralThreshold   int64  `json:"referralThreshold"`
	ReferralRewardCount int64  `json:"referralRewardCount"`
	IsReferralEnabled   bool   `json:"isReferralEnabled"`
	IsActive            bool   `json:"isActive"`
}

func toPlanResponse(p model.LotteryPlan) planResponse {
	return planResponse{
		ID:                  p.ID,
		Name:                p.Name,
		TokenPrice:          p.TokenPrice,
		TotalTokens:         p.TotalTokens,
		TotalWinners:        p.TotalWinners,
		PrizePerWinner:      p.PrizePerWinner,
		PrizeName:           p.PrizeName,
		DrawCycle:           string(p.DrawCycle),
		DrawDay:             p.DrawDay,
		DrawTime:            p.DrawTime,
		ReferralThreshold:   p.ReferralThreshold,
		ReferralRewardCount: p.ReferralRewardCount,
		IsReferralEnabled:   p.IsReferralEnabled,
		IsActive:            p.IsActive,
	}
}

// GetPlans возвращает активные лотерейные планы.
func (h *Handler) GetPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context(), true)
	if err != nil {
		h.logger.Error("get plans error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, toPlanResponse(p))
	}

	h.writeJSON(w, resp)
}

// GetSoldNumbers возвращает занятые номера плана.
func (h *Handler) GetSoldNumbers(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	if _, err := h.service.GetPlan(r.Context(), planID); err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("get plan error", zap.Error(err), zap.String("planID", planID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	numbers, err := h.service.GetSoldNumbers(r.Context(), planID)
	if err != nil {
		h.logger.Error("get sold numbers error", zap.Error(err), zap.String("planID", planID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if numbers == nil {
		numbers = []int64{}
	}
	h.writeJSON(w, numbers)
}

type purchaseRequest struct {
	PlanID  string  `json:"planId"`
	Numbers []int64 `json:"numbers"`
}

type tokenResponse struct {
	ID           string `json:"id"`
	PlanID       string `json:"planId"`
	Number       int64  `json:"number"`
	Status       string `json:"status"`
	Username     string `json:"username,omitempty"`
	PurchaseDate string `json:"purchaseDate"`
}

func toTokenResponse(t model.Token) tokenResponse {
	return tokenResponse{
		ID:           t.ID,
		PlanID:       t.PlanID,
		Number:       t.Number,
		Status:       string(t.Status),
		Username:     t.Username,
		PurchaseDate: t.PurchasedAt.Format(time.RFC3339),
	}
}

// PurchaseTokens покупает текущему пользователю набор номеров плана.
func (h *Handler) PurchaseTokens(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.PlanID == "" || len(req.Numbers) == 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	tokens, err := h.service.PurchaseTokens(r.Context(), userID, req.PlanID, req.Numbers)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPlanNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, repository.ErrPlanInactive):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		case errors.Is(err, repository.ErrTokenTaken):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		case errors.Is(err, repository.ErrTokenOutOfRange):
			http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		case errors.Is(err, repository.ErrInsufficientBalance):
			http.Error(w, http.StatusText(http.StatusPaymentRequired), http.StatusPaymentRequired)
		default:
			h.logger.Error("purchase tokens error", zap.Error(err), zap.String("userID", userID), zap.String("planID", req.PlanID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	resp := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		resp = append(resp, toTokenResponse(t))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encode purchase response", zap.Error(err))
	}
}

// GetTokens возвращает токены текущего пользователя.
func (h *Handler) GetTokens(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	tokens, err := h.service.GetTokensByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("get tokens error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(tokens) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		resp = append(resp, toTokenResponse(t))
	}

	h.writeJSON(w, resp)
}

// GetWinners возвращает последние выигравшие токены.
func (h *Handler) GetWinners(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.service.GetWinners(r.Context(), 100)
	if err != nil {
		h.logger.Error("get winners error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		resp = append(resp, toTokenResponse(t))
	}

	h.writeJSON(w, resp)
}

type transactionResponse struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Amount        int64  `json:"amount"`
	Charges       int64  `json:"charges"`
	NetAmount     int64  `json:"netAmount"`
	Status        string `json:"status"`
	Method        string `json:"method"`
	AccountNumber string `json:"accountNumber,omitempty"`
	AccountName   string `json:"accountName,omitempty"`
	ProofImage    string `json:"proofImage,omitempty"`
	TxID          string `json:"txId,omitempty"`
	Username      string `json:"username"`
	Date          string `json:"date"`
}

func toTransactionResponse(t model.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		Type:          string(t.Type),
		Amount:        t.Amount,
		Charges:       t.Fee,
		NetAmount:     t.NetAmount,
		Status:        string(t.Status),
		Method:        t.Method,
		AccountNumber: t.AccountNumber,
		AccountName:   t.AccountName,
		ProofImage:    t.ProofImage,
		TxID:          t.ExternalRef,
		Username:      t.Username,
		Date:          t.CreatedAt.Format(time.RFC3339),
	}
}

// GetTransactions возвращает историю операций текущего пользователя.
func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	transactions, err := h.service.GetTransactionsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("get transactions error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if len(transactions) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resp := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		resp = append(resp, toTransactionResponse(t))
	}

	h.writeJSON(w, resp)
}

type depositRequest struct {
	Amount     int64  `json:"amount"`
	Method     string `json:"method"`
	ProofImage string `json:"proofImage"`
	TxID       string `json:"txId"`
}

// Deposit создаёт запрос на пополнение для текущего пользователя.
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !validation.IsValidAmount(req.Amount) || req.ProofImage == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	t, err := h.service.CreateDeposit(r.Context(), userID, service.DepositInput{
		Amount:      req.Amount,
		Method:      req.Method,
		ProofImage:  req.ProofImage,
		ExternalRef: req.TxID,
	})
	if err != nil {
		h.logger.Error("create deposit error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toTransactionResponse(*t)); err != nil {
		h.logger.Error("encode deposit response", zap.Error(err))
	}
}

type withdrawRequest struct {
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}

// Withdraw создаёт запрос на вывод средств для текущего пользователя.
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !validation.IsValidAmount(req.Amount) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !validation.IsValidAccountNumber(req.AccountNumber) {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	t, err := h.service.CreateWithdrawal(r.Context(), userID, service.WithdrawalInput{
		Amount:        req.Amount,
		Method:        req.Method,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			http.Error(w, http.StatusText(http.StatusPaymentRequired), http.StatusPaymentRequired)
			return
		}
		h.logger.Error("create withdrawal error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toTransactionResponse(*t)); err != nil {
		h.logger.Error("encode withdrawal response", zap.Error(err))
	}
}

type planRewardResponse struct {
	Plan       planResponse `json:"plan"`
	Count      int64        `json:"count"`
	Cycles     int64        `json:"cycles"`
	FreeTokens int64        `json:"freeTokens"`
}

type referralSummaryResponse struct {
	ReferralCode    string               `json:"referralCode"`
	ReferralsCount  int64                `json:"referralsCount"`
	Plans           []planRewardResponse `json:"plans"`
	TotalFreeTokens int64                `json:"totalFreeTokens"`
}

// GetReferrals возвращает реферальный прогресс текущего пользователя.
func (h *Handler) GetReferrals(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	summary, err := h.service.GetReferralSummary(r.Context(), userID)
	if err != nil {
		h.logger.Error("get referrals error", zap.Error(err), zap.String("userID", userID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := referralSummaryResponse{
		ReferralCode:    summary.ReferralCode,
		ReferralsCount:  summary.ReferralsCount,
		Plans:           make([]planRewardResponse, 0, len(summary.Plans)),
		TotalFreeTokens: summary.TotalFreeTokens,
	}
	for _, p := range summary.Plans {
		resp.Plans = append(resp.Plans, planRewardResponse{
			Plan:       toPlanResponse(p.Plan),
			Count:      p.Count,
			Cycles:     p.Cycles,
			FreeTokens: p.FreeTokens,
		})
	}

	h.writeJSON(w, resp)
}

type paymentMethodResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Number   string `json:"number"`
	IsActive bool   `json:"isActive"`
}

func toPaymentMethodResponse(m model.PaymentMethod) paymentMethodResponse {
	return paymentMethodResponse{
		ID:       m.ID,
		Name:     m.Name,
		Title:    m.Title,
		Number:   m.Number,
		IsActive: m.IsActive,
	}
}

// GetPaymentMethods возвращает активные платёжные каналы.
func (h *Handler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListPaymentMethods(r.Context(), true)
	if err != nil {
		h.logger.Error("get payment methods error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]paymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		resp = append(resp, toPaymentMethodResponse(m))
	}

	h.writeJSON(w, resp)
}

type supportResponse struct {
	Link string `json:"link"`
}

// GetSupport возвращает контакт поддержки в виде ссылки на чат.
func (h *Handler) GetSupport(w http.ResponseWriter, r *http.Request) {
	link, err := h.service.GetSupportLink(r.Context())
	if err != nil {
		h.logger.Error("get support link error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, supportResponse{Link: link})
}

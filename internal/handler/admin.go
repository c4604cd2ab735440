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
)

// requireAdmin пропускает дальше только пользователей с ролью ADMIN.
// Роль перечитывается из хранилища на каждый запрос.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
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

		if u.Role != model.RoleAdmin {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AdminGetUsers возвращает всех пользователей.
func (h *Handler) AdminGetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}

	h.writeJSON(w, resp)
}

// AdminDeleteUser удаляет учётную запись пользователя.
func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("delete user error", zap.Error(err), zap.String("userID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type planRequest struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	TokenPrice          int64  `json:"tokenPrice"`
	TotalTokens         int64  `json:"totalTokens"`
	TotalWinners        int64  `json:"totalWinners"`
	PrizePerWinner      int64  `json:"prizePerWinner"`
	PrizeName           string `json:"prizeName"`
	DrawCycle           string `json:"drawCycle"`
	DrawDay             string `json:"drawDay"`
	DrawTime            string `json:"drawTime"`
	ReferralThreshold   int64  `json:"referralThreshold"`
	ReferralRewardCount int64  `json:"referralRewardCount"`
	IsReferralEnabled   bool   `json:"isReferralEnabled"`
	IsActive            bool   `json:"isActive"`
}

func (req planRequest) toModel() *model.LotteryPlan {
	return &model.LotteryPlan{
		ID:                  req.ID,
		Name:                req.Name,
		TokenPrice:          req.TokenPrice,
		TotalTokens:         req.TotalTokens,
		TotalWinners:        req.TotalWinners,
		PrizePerWinner:      req.PrizePerWinner,
		PrizeName:           req.PrizeName,
		DrawCycle:           model.DrawCycle(req.DrawCycle),
		DrawDay:             req.DrawDay,
		DrawTime:            req.DrawTime,
		ReferralThreshold:   req.ReferralThreshold,
		ReferralRewardCount: req.ReferralRewardCount,
		IsReferralEnabled:   req.IsReferralEnabled,
		IsActive:            req.IsActive,
	}
}

func (req planRequest) valid() bool {
	if req.Name == "" || req.TokenPrice <= 0 || req.TotalTokens <= 0 {
		return false
	}
	if req.TotalWinners <= 0 || req.TotalWinners > req.TotalTokens {
		return false
	}
	if req.ReferralThreshold < 0 || req.ReferralRewardCount < 0 {
		return false
	}
	cycle := model.DrawCycle(req.DrawCycle)
	return cycle == model.DrawCycleWeekly || cycle == model.DrawCycleMonthly
}

// AdminGetPlans возвращает все планы, включая неактивные.
func (h *Handler) AdminGetPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context(), false)
	if err != nil {
		h.logger.Error("list plans error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		resp = append(resp, toPlanResponse(p))
	}

	h.writeJSON(w, resp)
}

// AdminCreatePlan сохраняет новый лотерейный план.
func (h *Handler) AdminCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if !req.valid() {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	p := req.toModel()
	if err := h.service.CreatePlan(r.Context(), p); err != nil {
		h.logger.Error("create plan error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toPlanResponse(*p)); err != nil {
		h.logger.Error("encode plan response", zap.Error(err))
	}
}

// AdminUpdatePlan обновляет существующий план.
func (h *Handler) AdminUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	req.ID = chi.URLParam(r, "planID")
	if !req.valid() {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	if err := h.service.UpdatePlan(r.Context(), req.toModel()); err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("update plan error", zap.Error(err), zap.String("planID", req.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// AdminDeletePlan удаляет план.
func (h *Handler) AdminDeletePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "planID")

	if err := h.service.DeletePlan(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrPlanNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("delete plan error", zap.Error(err), zap.String("planID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AdminGetPlanTokens возвращает проданные токены плана.
func (h *Handler) AdminGetPlanTokens(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	tokens, err := h.service.ListTokensByPlan(r.Context(), planID)
	if err != nil {
		h.logger.Error("list plan tokens error", zap.Error(err), zap.String("planID", planID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		resp = append(resp, toTokenResponse(t))
	}

	h.writeJSON(w, resp)
}

// AdminGetTransactions возвращает операции, опционально отфильтрованные по статусу.
func (h *Handler) AdminGetTransactions(w http.ResponseWriter, r *http.Request) {
	status := model.TransactionStatus(r.URL.Query().Get("status"))
	switch status {
	case "", model.TransactionStatusPending, model.TransactionStatusApproved, model.TransactionStatusRejected:
	default:
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), status)
	if err != nil {
		h.logger.Error("list transactions error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]transactionResponse, 0, len(transactions))
	for _, t := range transactions {
		resp = append(resp, toTransactionResponse(t))
	}

	h.writeJSON(w, resp)
}

// AdminApproveTransaction одобряет операцию. Повторное одобрение не приводит
// к повторному зачислению и возвращает 409.
func (h *Handler) AdminApproveTransaction(w http.ResponseWriter, r *http.Request) {
	h.settleTransaction(w, r, h.service.ApproveTransaction)
}

// AdminRejectTransaction отклоняет операцию.
func (h *Handler) AdminRejectTransaction(w http.ResponseWriter, r *http.Request) {
	h.settleTransaction(w, r, h.service.RejectTransaction)
}

func (h *Handler) settleTransaction(w http.ResponseWriter, r *http.Request, settle func(ctx context.Context, id string) error) {
	id := chi.URLParam(r, "transactionID")

	if err := settle(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrTransactionNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, repository.ErrTransactionNotPending):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		default:
			h.logger.Error("settle transaction error", zap.Error(err), zap.String("transactionID", id))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

type paymentMethodRequest struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Number   string `json:"number"`
	IsActive bool   `json:"isActive"`
}

// AdminGetPaymentMethods возвращает все платёжные каналы, включая отключённые.
func (h *Handler) AdminGetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListPaymentMethods(r.Context(), false)
	if err != nil {
		h.logger.Error("list payment methods error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]paymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		resp = append(resp, toPaymentMethodResponse(m))
	}

	h.writeJSON(w, resp)
}

// AdminCreatePaymentMethod сохраняет новый платёжный канал.
func (h *Handler) AdminCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req paymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, http.StatusText(http.StatusUnprocessableEntity), http.StatusUnprocessableEntity)
		return
	}

	m := &model.PaymentMethod{
		Name:     req.Name,
		Title:    req.Title,
		Number:   req.Number,
		IsActive: req.IsActive,
	}
	if err := h.service.CreatePaymentMethod(r.Context(), m); err != nil {
		h.logger.Error("create payment method error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toPaymentMethodResponse(*m)); err != nil {
		h.logger.Error("encode payment method response", zap.Error(err))
	}
}

// AdminUpdatePaymentMethod обновляет платёжный канал.
func (h *Handler) AdminUpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req paymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	m := &model.PaymentMethod{
		ID:       chi.URLParam(r, "methodID"),
		Name:     req.Name,
		Title:    req.Title,
		Number:   req.Number,
		IsActive: req.IsActive,
	}
	if err := h.service.UpdatePaymentMethod(r.Context(), m); err != nil {
		if errors.Is(err, repository.ErrMethodNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("update payment method error", zap.Error(err), zap.String("methodID", m.ID))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// AdminDeletePaymentMethod удаляет платёжный канал.
func (h *Handler) AdminDeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "methodID")

	if err := h.service.DeletePaymentMethod(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrMethodNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		h.logger.Error("delete payment method error", zap.Error(err), zap.String("methodID", id))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type supportContactRequest struct {
	Contact string `json:"contact"`
}

// AdminUpdateSupportContact сохраняет контакт поддержки.
func (h *Handler) AdminUpdateSupportContact(w http.ResponseWriter, r *http.Request) {
	var req supportContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateSupportContact(r.Context(), req.Contact); err != nil {
		h.logger.Error("update support contact error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

type drawResponse struct {
	ID           string `json:"id"`
	PlanID       string `json:"planId"`
	Seed         int64  `json:"seed"`
	WinnersCount int64  `json:"winnersCount"`
	ExecutedAt   string `json:"executedAt"`
}

func toDrawResponse(d model.Draw) drawResponse {
	return drawResponse{
		ID:           d.ID,
		PlanID:       d.PlanID,
		Seed:         d.Seed,
		WinnersCount: d.WinnersCount,
		ExecutedAt:   d.ExecutedAt.Format(time.RFC3339),
	}
}

// AdminRunDraw проводит розыгрыш плана.
func (h *Handler) AdminRunDraw(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "planID")

	draw, err := h.service.RunDraw(r.Context(), planID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPlanNotFound):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, repository.ErrNoWaitingTokens):
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		default:
			h.logger.Error("run draw error", zap.Error(err), zap.String("planID", planID))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toDrawResponse(*draw)); err != nil {
		h.logger.Error("encode draw response", zap.Error(err))
	}
}

// AdminGetDraws возвращает журнал розыгрышей.
func (h *Handler) AdminGetDraws(w http.ResponseWriter, r *http.Request) {
	draws, err := h.service.ListDraws(r.Context())
	if err != nil {
		h.logger.Error("list draws error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]drawResponse, 0, len(draws))
	for _, d := range draws {
		resp = append(resp, toDrawResponse(d))
	}

	h.writeJSON(w, resp)
}

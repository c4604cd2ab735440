// Package service реализует бизнес-логику лотерейного сервиса.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/lottery-system/internal/model"
	"github.com/mmeshcher/lottery-system/internal/repository"
	"github.com/mmeshcher/lottery-system/internal/reward"
	"github.com/mmeshcher/lottery-system/internal/validation"
)

// Комиссия сервиса: 10% от суммы операции.
const feeRatePercent = 10

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, u *model.User) error
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, id string) error
	GetBalance(ctx context.Context, userID string) (int64, int64, error)
	GetReferralStats(ctx context.Context, userID string) ([]model.ReferralStat, error)

	CreatePlan(ctx context.Context, p *model.LotteryPlan) error
	UpdatePlan(ctx context.Context, p *model.LotteryPlan) error
	DeletePlan(ctx context.Context, id string) error
	GetPlan(ctx context.Context, id string) (*model.LotteryPlan, error)
	ListPlans(ctx context.Context, onlyActive bool) ([]model.LotteryPlan, error)

	PurchaseTokens(ctx context.Context, userID string, tokens []model.Token) error
	GetTokensByUser(ctx context.Context, userID string) ([]model.Token, error)
	GetSoldNumbers(ctx context.Context, planID string) ([]int64, error)
	GetWinners(ctx context.Context, limit int) ([]model.Token, error)
	ListTokensByPlan(ctx context.Context, planID string) ([]model.Token, error)

	CreateDeposit(ctx context.Context, t *model.Transaction) error
	CreateWithdrawal(ctx context.Context, t *model.Transaction) error
	GetTransactionsByUser(ctx context.Context, userID string) ([]model.Transaction, error)
	ListTransactions(ctx context.Context, status model.TransactionStatus) ([]model.Transaction, error)
	ApproveTransaction(ctx context.Context, id string) error
	RejectTransaction(ctx context.Context, id string) error

	RunDraw(ctx context.Context, drawID, planID string, seed int64) (*model.Draw, error)
	ListDraws(ctx context.Context) ([]model.Draw, error)
	GetLastDraw(ctx context.Context, planID string) (*model.Draw, error)

	CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error
	UpdatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, id string) error
	ListPaymentMethods(ctx context.Context, onlyActive bool) ([]model.PaymentMethod, error)

	GetSupportContact(ctx context.Context) (string, error)
	UpdateSupportContact(ctx context.Context, contact string) error
}

// Service содержит бизнес-логику лотерейного сервиса.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService создаёт новый сервис с указанным репозиторием.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// Fee возвращает комиссию операции: 10% от суммы с округлением до ближайшей единицы.
func Fee(amount int64) int64 {
	return (amount*feeRatePercent + 50) / 100
}

// Net возвращает сумму к зачислению после вычета комиссии.
// Всегда выполняется Fee(a) + Net(a) = a.
func Net(amount int64) int64 {
	return amount - Fee(amount)
}

// RegisterInput содержит данные регистрации нового пользователя.
type RegisterInput struct {
	Login        string
	Password     string
	FirstName    string
	LastName     string
	Mobile       string
	ReferralCode string
}

// RegisterUser регистрирует нового пользователя. Если указан чужой реферальный
// код, регистрация засчитывается пригласившему.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*model.User, error) {
	var referredBy *string
	if in.ReferralCode != "" {
		referrer, err := s.repo.GetUserByReferralCode(ctx, strings.ToUpper(strings.TrimSpace(in.ReferralCode)))
		if err != nil {
			return nil, err
		}
		referredBy = &referrer.ID
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Login:        in.Login,
		PasswordHash: hashPassword(in.Login, in.Password),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Mobile:       in.Mobile,
		Role:         model.RoleUser,
		ReferredBy:   referredBy,
	}

	// Сгенерированный код может столкнуться с существующим, тогда пробуем следующий.
	for attempt := 0; attempt < 5; attempt++ {
		u.ReferralCode = newReferralCode()
		err := s.repo.CreateUser(ctx, u)
		if err == nil {
			return s.repo.GetUserByID(ctx, u.ID)
		}
		if errors.Is(err, repository.ErrReferralCodeTaken) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("generate referral code: %w", repository.ErrReferralCodeTaken)
}

func newReferralCode() string {
	return fmt.Sprintf("LUCKY%d", 1000+rand.Intn(9000))
}

// AuthenticateUser проверяет логин и пароль пользователя.
func (s *Service) AuthenticateUser(ctx context.Context, login, password string) (*model.User, error) {
	u, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	hashed := hashPassword(login, password)
	if hex.EncodeToString(hashed) != hex.EncodeToString(u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func hashPassword(login, password string) []byte {
	sum := sha256.Sum256([]byte(login + ":" + password))
	return sum[:]
}

// GetUser возвращает пользователя по идентификатору.
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// ListUsers возвращает всех пользователей (админская сводка).
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

// DeleteUser удаляет учётную запись пользователя.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.DeleteUser(ctx, id)
}

// GetBalance возвращает баланс пользователя в виде структуры model.Balance.
func (s *Service) GetBalance(ctx context.Context, userID string) (*model.Balance, error) {
	current, withdrawn, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.Balance{
		Current:   current,
		Withdrawn: withdrawn,
	}, nil
}

// DepositInput содержит данные запроса на пополнение.
type DepositInput struct {
	Amount      int64
	Method      string
	ProofImage  string
	ExternalRef string
}

// CreateDeposit создаёт запрос на пополнение в статусе PENDING.
// Средства зачисляются только после одобрения администратором.
func (s *Service) CreateDeposit(ctx context.Context, userID string, in DepositInput) (*model.Transaction, error) {
	if !validation.IsValidAmount(in.Amount) {
		return nil, errors.New("deposit amount must be positive")
	}
	if in.ProofImage == "" {
		return nil, errors.New("payment proof is required")
	}

	t := &model.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        model.TransactionDeposit,
		Amount:      in.Amount,
		Fee:         Fee(in.Amount),
		NetAmount:   Net(in.Amount),
		Status:      model.TransactionStatusPending,
		Method:      in.Method,
		ProofImage:  in.ProofImage,
		ExternalRef: in.ExternalRef,
	}

	if err := s.repo.CreateDeposit(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// WithdrawalInput содержит данные запроса на вывод средств.
type WithdrawalInput struct {
	Amount        int64
	Method        string
	AccountNumber string
	AccountName   string
}

// CreateWithdrawal создаёт запрос на вывод. Полная сумма списывается с кошелька
// сразу, возврат происходит только при отклонении запроса администратором.
func (s *Service) CreateWithdrawal(ctx context.Context, userID string, in WithdrawalInput) (*model.Transaction, error) {
	if !validation.IsValidAmount(in.Amount) {
		return nil, errors.New("withdrawal amount must be positive")
	}

	t := &model.Transaction{
		ID:            uuid.NewString(),
		UserID:        userID,
		Type:          model.TransactionWithdrawal,
		Amount:        in.Amount,
		Fee:           Fee(in.Amount),
		NetAmount:     Net(in.Amount),
		Status:        model.TransactionStatusPending,
		Method:        in.Method,
		AccountNumber: in.AccountNumber,
		AccountName:   in.AccountName,
	}

	if err := s.repo.CreateWithdrawal(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// GetTransactionsByUser возвращает историю операций пользователя.
func (s *Service) GetTransactionsByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	return s.repo.GetTransactionsByUser(ctx, userID)
}

// ListTransactions возвращает операции для админской очереди рассмотрения.
func (s *Service) ListTransactions(ctx context.Context, status model.TransactionStatus) ([]model.Transaction, error) {
	return s.repo.ListTransactions(ctx, status)
}

// ApproveTransaction одобряет операцию. Повторное одобрение возвращает
// repository.ErrTransactionNotPending без изменения баланса.
func (s *Service) ApproveTransaction(ctx context.Context, id string) error {
	return s.repo.ApproveTransaction(ctx, id)
}

// RejectTransaction отклоняет операцию.
func (s *Service) RejectTransaction(ctx context.Context, id string) error {
	return s.repo.RejectTransaction(ctx, id)
}

// ListPlans возвращает лотерейные планы.
func (s *Service) ListPlans(ctx context.Context, onlyActive bool) ([]model.LotteryPlan, error) {
	return s.repo.ListPlans(ctx, onlyActive)
}

// GetPlan возвращает план по идентификатору.
func (s *Service) GetPlan(ctx context.Context, id string) (*model.LotteryPlan, error) {
	return s.repo.GetPlan(ctx, id)
}

// CreatePlan сохраняет новый план, при необходимости генерируя идентификатор.
func (s *Service) CreatePlan(ctx context.Context, p *model.LotteryPlan) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return s.repo.CreatePlan(ctx, p)
}

// UpdatePlan обновляет существующий план.
func (s *Service) UpdatePlan(ctx context.Context, p *model.LotteryPlan) error {
	return s.repo.UpdatePlan(ctx, p)
}

// DeletePlan удаляет план.
func (s *Service) DeletePlan(ctx context.Context, id string) error {
	return s.repo.DeletePlan(ctx, id)
}

// PurchaseTokens покупает пользователю указанные номера плана.
// Запрос отклоняется целиком, если хотя бы один номер уже занят.
func (s *Service) PurchaseTokens(ctx context.Context, userID, planID string, numbers []int64) ([]model.Token, error) {
	if len(numbers) == 0 {
		return nil, errors.New("no token numbers requested")
	}

	seen := make(map[int64]struct{}, len(numbers))
	tokens := make([]model.Token, 0, len(numbers))
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			return nil, fmt.Errorf("%w: %d", repository.ErrTokenTaken, n)
		}
		seen[n] = struct{}{}
		tokens = append(tokens, model.Token{
			ID:     uuid.NewString(),
			PlanID: planID,
			Number: n,
			Status: model.TokenStatusWaiting,
			UserID: userID,
		})
	}

	if err := s.repo.PurchaseTokens(ctx, userID, tokens); err != nil {
		return nil, err
	}

	return tokens, nil
}

// GetTokensByUser возвращает токены пользователя.
func (s *Service) GetTokensByUser(ctx context.Context, userID string) ([]model.Token, error) {
	return s.repo.GetTokensByUser(ctx, userID)
}

// GetSoldNumbers возвращает занятые номера плана.
func (s *Service) GetSoldNumbers(ctx context.Context, planID string) ([]int64, error) {
	return s.repo.GetSoldNumbers(ctx, planID)
}

// GetWinners возвращает последние выигравшие токены.
func (s *Service) GetWinners(ctx context.Context, limit int) ([]model.Token, error) {
	return s.repo.GetWinners(ctx, limit)
}

// ListTokensByPlan возвращает проданные токены плана.
func (s *Service) ListTokensByPlan(ctx context.Context, planID string) ([]model.Token, error) {
	return s.repo.ListTokensByPlan(ctx, planID)
}

// PlanReward содержит реферальный прогресс пользователя по одному плану.
type PlanReward struct {
	Plan       model.LotteryPlan
	Count      int64
	Cycles     int64
	FreeTokens int64
}

// ReferralSummary содержит реферальный прогресс пользователя по всем планам.
type ReferralSummary struct {
	ReferralCode    string
	ReferralsCount  int64
	Plans           []PlanReward
	TotalFreeTokens int64
}

// GetReferralSummary считает заработанные бесплатные токены по накопленным
// счётчикам и текущей политике планов. Счётчики выключенных планов
// сохраняются, но наград не дают.
func (s *Service) GetReferralSummary(ctx context.Context, userID string) (*ReferralSummary, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.GetReferralStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	plans, err := s.repo.ListPlans(ctx, true)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(stats))
	for _, st := range stats {
		counts[st.PlanID] = st.Count
	}

	summary := &ReferralSummary{
		ReferralCode:   u.ReferralCode,
		ReferralsCount: u.ReferralsCount,
	}
	for _, plan := range plans {
		count := counts[plan.ID]
		summary.Plans = append(summary.Plans, PlanReward{
			Plan:       plan,
			Count:      count,
			Cycles:     reward.Cycles(count, plan),
			FreeTokens: reward.FreeTokens(count, plan),
		})
	}
	summary.TotalFreeTokens = reward.Total(counts, plans)

	return summary, nil
}

// ListPaymentMethods возвращает платёжные каналы.
func (s *Service) ListPaymentMethods(ctx context.Context, onlyActive bool) ([]model.PaymentMethod, error) {
	return s.repo.ListPaymentMethods(ctx, onlyActive)
}

// CreatePaymentMethod сохраняет новый платёжный канал.
func (s *Service) CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return s.repo.CreatePaymentMethod(ctx, m)
}

// UpdatePaymentMethod обновляет платёжный канал.
func (s *Service) UpdatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	return s.repo.UpdatePaymentMethod(ctx, m)
}

// DeletePaymentMethod удаляет платёжный канал.
func (s *Service) DeletePaymentMethod(ctx context.Context, id string) error {
	return s.repo.DeletePaymentMethod(ctx, id)
}

// GetSupportLink возвращает контакт поддержки в виде ссылки на чат.
func (s *Service) GetSupportLink(ctx context.Context) (string, error) {
	contact, err := s.repo.GetSupportContact(ctx)
	if err != nil {
		return "", err
	}
	return validation.SupportLink(contact), nil
}

// UpdateSupportContact сохраняет контакт поддержки.
func (s *Service) UpdateSupportContact(ctx context.Context, contact string) error {
	return s.repo.UpdateSupportContact(ctx, contact)
}

// ListDraws возвращает журнал розыгрышей.
func (s *Service) ListDraws(ctx context.Context) ([]model.Draw, error) {
	return s.repo.ListDraws(ctx)
}

// Package model содержит доменные сущности лотерейного сервиса.
package model

import "time"

// Role определяет роль пользователя в системе.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User представляет зарегистрированного участника лотереи.
type User struct {
	ID             string
	Login          string
	PasswordHash   []byte
	FirstName      string
	LastName       string
	Mobile         string
	Role           Role
	WalletBalance  int64
	ReferralCode   string
	ReferralsCount int64
	TotalWinnings  int64
	ReferredBy     *string
	CreatedAt      time.Time
}

// DrawCycle описывает периодичность розыгрыша плана.
type DrawCycle string

const (
	DrawCycleWeekly  DrawCycle = "WEEKLY"
	DrawCycleMonthly DrawCycle = "MONTHLY"
)

// LotteryPlan описывает лотерейный план: цену токена, призовой фонд,
// расписание розыгрыша и реферальную политику.
type LotteryPlan struct {
	ID                  string
	Name                string
	TokenPrice          int64
	TotalTokens         int64
	TotalWinners        int64
	PrizePerWinner      int64
	PrizeName           string
	DrawCycle           DrawCycle
	DrawDay             string
	DrawTime            string
	ReferralThreshold   int64
	ReferralRewardCount int64
	IsReferralEnabled   bool
	IsActive            bool
}

// TokenStatus описывает состояние купленного токена.
type TokenStatus string

const (
	TokenStatusWaiting     TokenStatus = "WAITING"
	TokenStatusWinner      TokenStatus = "WINNER"
	TokenStatusNotSelected TokenStatus = "NOT_SELECTED"
)

// Token представляет купленный номер в рамках одного плана.
// Номер уникален внутри плана.
type Token struct {
	ID          string
	PlanID      string
	Number      int64
	Status      TokenStatus
	UserID      string
	Username    string
	PurchasedAt time.Time
}

// TransactionType определяет тип денежной операции.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
)

// TransactionStatus описывает статус рассмотрения операции администратором.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "PENDING"
	TransactionStatusApproved TransactionStatus = "APPROVED"
	TransactionStatusRejected TransactionStatus = "REJECTED"
)

// Transaction описывает запрос на пополнение или вывод средств.
// Всегда выполняется netAmount = amount - fee.
type Transaction struct {
	ID            string
	UserID        string
	Username      string
	Type          TransactionType
	Amount        int64
	Fee           int64
	NetAmount     int64
	Status        TransactionStatus
	Method        string
	AccountNumber string
	AccountName   string
	ProofImage    string
	ExternalRef   string
	CreatedAt     time.Time
}

// PaymentMethod описывает платёжный канал, настроенный администратором.
type PaymentMethod struct {
	ID       string
	Name     string
	Title    string
	Number   string
	IsActive bool
}

// Draw содержит сохранённый результат проведённого розыгрыша.
// Seed позволяет воспроизвести выборку победителей.
type Draw struct {
	ID           string
	PlanID       string
	Seed         int64
	WinnersCount int64
	ExecutedAt   time.Time
}

// Balance содержит текущий баланс кошелька и сумму всех выводов.
type Balance struct {
	Current   int64 `json:"current"`
	Withdrawn int64 `json:"withdrawn"`
}

// ReferralStat содержит накопленный реферальный счётчик пользователя по плану.
type ReferralStat struct {
	PlanID string
	Count  int64
}

// Package reward содержит расчёт бесплатных токенов по реферальной программе.
package reward

import "github.com/mmeshcher/lottery-system/internal/model"

// Cycles возвращает число завершённых реферальных циклов по плану.
// План с выключенной программой или нулевым порогом даёт ноль.
func Cycles(count int64, plan model.LotteryPlan) int64 {
	if !plan.IsReferralEnabled || plan.ReferralThreshold <= 0 {
		return 0
	}
	if count < 0 {
		return 0
	}
	return count / plan.ReferralThreshold
}

// FreeTokens возвращает число заработанных бесплатных токенов по плану.
func FreeTokens(count int64, plan model.LotteryPlan) int64 {
	return Cycles(count, plan) * plan.ReferralRewardCount
}

// Total суммирует заработанные бесплатные токены по всем планам.
// Счётчики планов, отсутствующих в counts, считаются нулевыми.
func Total(counts map[string]int64, plans []model.LotteryPlan) int64 {
	var total int64
	for _, plan := range plans {
		total += FreeTokens(counts[plan.ID], plan)
	}
	return total
}

package reward

import (
	"testing"

	"github.com/mmeshcher/lottery-system/internal/model"
)

func TestFreeTokens(t *testing.T) {
	tests := []struct {
		name  string
		count int64
		plan  model.LotteryPlan
		want  int64
	}{
		{
			name:  "two full cycles",
			count: 12,
			plan: model.LotteryPlan{
				ReferralThreshold:   5,
				ReferralRewardCount: 1,
				IsReferralEnabled:   true,
			},
			want: 2,
		},
		{
			name:  "below threshold",
			count: 4,
			plan: model.LotteryPlan{
				ReferralThreshold:   5,
				ReferralRewardCount: 1,
				IsReferralEnabled:   true,
			},
			want: 0,
		},
		{
			name:  "multiple tokens per cycle",
			count: 10,
			plan: model.LotteryPlan{
				ReferralThreshold:   5,
				ReferralRewardCount: 3,
				IsReferralEnabled:   true,
			},
			want: 6,
		},
		{
			name:  "disabled plan keeps history but earns nothing",
			count: 100,
			plan: model.LotteryPlan{
				ReferralThreshold:   5,
				ReferralRewardCount: 1,
				IsReferralEnabled:   false,
			},
			want: 0,
		},
		{
			name:  "zero threshold must not divide",
			count: 100,
			plan: model.LotteryPlan{
				ReferralThreshold:   0,
				ReferralRewardCount: 1,
				IsReferralEnabled:   true,
			},
			want: 0,
		},
		{
			name:  "zero referrals",
			count: 0,
			plan: model.LotteryPlan{
				ReferralThreshold:   5,
				ReferralRewardCount: 1,
				IsReferralEnabled:   true,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreeTokens(tt.count, tt.plan)
			if got != tt.want {
				t.Fatalf("FreeTokens(%d) = %d, want %d", tt.count, got, tt.want)
			}
		})
	}
}

func TestTotal(t *testing.T) {
	plans := []model.LotteryPlan{
		{
			ID:                  "silver",
			ReferralThreshold:   5,
			ReferralRewardCount: 1,
			IsReferralEnabled:   true,
		},
		{
			ID:                  "gold",
			ReferralThreshold:   10,
			ReferralRewardCount: 2,
			IsReferralEnabled:   true,
		},
		{
			ID:                  "platinum",
			ReferralThreshold:   3,
			ReferralRewardCount: 5,
			IsReferralEnabled:   false,
		},
	}

	counts := map[string]int64{
		"silver":   12,
		"gold":     10,
		"platinum": 30,
	}

	// silver: 12/5*1 = 2, gold: 10/10*2 = 2, platinum выключен.
	if got := Total(counts, plans); got != 4 {
		t.Fatalf("Total = %d, want 4", got)
	}

	if got := Total(map[string]int64{}, plans); got != 0 {
		t.Fatalf("Total without counts = %d, want 0", got)
	}
}

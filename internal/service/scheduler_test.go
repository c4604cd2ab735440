package service

import (
	"testing"
	"time"

	"github.com/mmeshcher/lottery-system/internal/model"
)

func TestLastScheduledDraw(t *testing.T) {
	// Среда, 15 января 2025, 12:00 UTC.
	now := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		plan    model.LotteryPlan
		want    time.Time
		wantErr bool
	}{
		{
			name: "weekly same day before draw time",
			plan: model.LotteryPlan{
				DrawCycle: model.DrawCycleWeekly,
				DrawDay:   "Wednesday",
				DrawTime:  "20:00",
			},
			want: time.Date(2025, time.January, 8, 20, 0, 0, 0, time.UTC),
		},
		{
			name: "weekly same day after draw time",
			plan: model.LotteryPlan{
				DrawCycle: model.DrawCycleWeekly,
				DrawDay:   "Wednesday",
				DrawTime:  "09:30",
			},
			want: time.Date(2025, time.January, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name: "weekly earlier weekday",
			plan: model.LotteryPlan{
				DrawCycle: model.DrawCycleWeekly,
				DrawDay:   "monday",
				DrawTime:  "18:00",
			},
			want: time.Date(2025, time.January, 13, 18, 0, 0, 0, time.UTC),
		},
		{
			name: "monthly before day of month",
			plan: model.LotteryPlan{
				DrawCycle: model.DrawCycleMonthly,
				DrawDay:   "20",
				DrawTime:  "21:00",
			},
			want: time.Date(2024, time.December, 20, 21, 0, 0, 0, time.UTC),
		},
		{
			name: "monthly after day of month",
			plan: model.LotteryPlan{
				DrawCycle: model.DrawCycleMonthly,
				DrawDay:   "10",
				DrawTime:  "21:00",
			},
			want: time.Date(2025, time.January, 10, 21, 0, 0, 0, time.UTC),
		},
		{
			name: "empty schedule is skipped",
			plan: model.LotteryPlan{
				DrawCycle: model.DrawCycleWeekly,
			},
			want: time.Time{},
		},
		{
			name: "invalid time",
			plan: model.LotteryPlan{
				DrawCycle: model.DrawCycleWeekly,
				DrawDay:   "Friday",
				DrawTime:  "25:99",
			},
			wantErr: true,
		},
		{
			name: "unknown weekday",
			plan: model.LotteryPlan{
				DrawCycle: model.DrawCycleWeekly,
				DrawDay:   "Someday",
				DrawTime:  "20:00",
			},
			wantErr: true,
		},
		{
			name: "invalid day of month",
			plan: model.LotteryPlan{
				DrawCycle: model.DrawCycleMonthly,
				DrawDay:   "32",
				DrawTime:  "20:00",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lastScheduledDraw(tt.plan, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("lastScheduledDraw = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSeedVaries(t *testing.T) {
	a := newSeed()
	b := newSeed()
	if a == b {
		t.Fatalf("consecutive seeds must differ, got %d twice", a)
	}
}

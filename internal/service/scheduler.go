package service

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmeshcher/lottery-system/internal/model"
	"github.com/mmeshcher/lottery-system/internal/repository"
)

// RunDraw проводит розыгрыш плана со случайным криптографическим seed.
// Seed сохраняется вместе с результатом, поэтому выборку можно воспроизвести.
func (s *Service) RunDraw(ctx context.Context, planID string) (*model.Draw, error) {
	return s.repo.RunDraw(ctx, uuid.NewString(), planID, newSeed())
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// StartDrawScheduler запускает фоновый процесс автоматических розыгрышей
// по расписанию планов.
func (s *Service) StartDrawScheduler(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.processDueDraws(ctx, time.Now())
			}
		}
	}()
}

func (s *Service) processDueDraws(ctx context.Context, now time.Time) {
	plans, err := s.repo.ListPlans(ctx, true)
	if err != nil {
		s.logger.Error("list plans for scheduled draws", zap.Error(err))
		return
	}

	for _, plan := range plans {
		due, err := lastScheduledDraw(plan, now)
		if err != nil {
			s.logger.Warn("invalid draw schedule", zap.String("plan", plan.ID), zap.Error(err))
			continue
		}
		if due.IsZero() {
			continue
		}

		last, err := s.repo.GetLastDraw(ctx, plan.ID)
		if err != nil {
			s.logger.Error("get last draw", zap.String("plan", plan.ID), zap.Error(err))
			continue
		}
		if last != nil && !last.ExecutedAt.Before(due) {
			continue
		}

		draw, err := s.RunDraw(ctx, plan.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNoWaitingTokens) {
				continue
			}
			s.logger.Error("scheduled draw failed", zap.String("plan", plan.ID), zap.Error(err))
			continue
		}

		s.logger.Info("scheduled draw executed",
			zap.String("plan", plan.ID),
			zap.String("draw", draw.ID),
			zap.Int64("winners", draw.WinnersCount),
		)
	}
}

// lastScheduledDraw возвращает последний момент расписания плана, не позже now.
// Для WEEKLY drawDay содержит день недели, для MONTHLY — число месяца.
func lastScheduledDraw(plan model.LotteryPlan, now time.Time) (time.Time, error) {
	if plan.DrawTime == "" || plan.DrawDay == "" {
		return time.Time{}, nil
	}

	drawTime, err := time.Parse("15:04", plan.DrawTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse draw time %q: %w", plan.DrawTime, err)
	}
	hour, minute := drawTime.Hour(), drawTime.Minute()

	switch plan.DrawCycle {
	case model.DrawCycleWeekly:
		weekday, ok := parseWeekday(plan.DrawDay)
		if !ok {
			return time.Time{}, fmt.Errorf("unknown draw day %q", plan.DrawDay)
		}

		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		offset := (int(now.Weekday()) - int(weekday) + 7) % 7
		candidate = candidate.AddDate(0, 0, -offset)
		if candidate.After(now) {
			candidate = candidate.AddDate(0, 0, -7)
		}
		return candidate, nil

	case model.DrawCycleMonthly:
		day, err := strconv.Atoi(plan.DrawDay)
		if err != nil || day < 1 || day > 31 {
			return time.Time{}, fmt.Errorf("invalid day of month %q", plan.DrawDay)
		}

		candidate := time.Date(now.Year(), now.Month(), day, hour, minute, 0, 0, now.Location())
		if candidate.After(now) {
			candidate = candidate.AddDate(0, -1, 0)
		}
		return candidate, nil
	}

	return time.Time{}, fmt.Errorf("unknown draw cycle %q", plan.DrawCycle)
}

func parseWeekday(day string) (time.Weekday, bool) {
	switch strings.ToLower(day) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return time.Sunday, false
}

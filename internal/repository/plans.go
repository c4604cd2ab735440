package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mmeshcher/lottery-system/internal/model"
)

const planColumns = `id, name, token_price, total_tokens, total_winners, prize_per_winner,
	 prize_name, draw_cycle, draw_day, draw_time, referral_threshold, referral_reward_count,
	 is_referral_enabled, is_active`

func scanPlan(row pgx.Row) (*model.LotteryPlan, error) {
	var p model.LotteryPlan
	err := row.Scan(&p.ID, &p.Name, &p.TokenPrice, &p.TotalTokens, &p.TotalWinners,
		&p.PrizePerWinner, &p.PrizeName, &p.DrawCycle, &p.DrawDay, &p.DrawTime,
		&p.ReferralThreshold, &p.ReferralRewardCount, &p.IsReferralEnabled, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	return &p, nil
}

// CreatePlan сохраняет новый лотерейный план.
func (r *PostgresRepository) CreatePlan(ctx context.Context, p *model.LotteryPlan) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO lottery_plans (id, name, token_price, total_tokens, total_winners,
		   prize_per_winner, prize_name, draw_cycle, draw_day, draw_time,
		   referral_threshold, referral_reward_count, is_referral_enabled, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.Name, p.TokenPrice, p.TotalTokens, p.TotalWinners,
		p.PrizePerWinner, p.PrizeName, string(p.DrawCycle), p.DrawDay, p.DrawTime,
		p.ReferralThreshold, p.ReferralRewardCount, p.IsReferralEnabled, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// UpdatePlan обновляет существующий лотерейный план целиком.
func (r *PostgresRepository) UpdatePlan(ctx context.Context, p *model.LotteryPlan) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE lottery_plans
		 SET name = $2, token_price = $3, total_tokens = $4, total_winners = $5,
		     prize_per_winner = $6, prize_name = $7, draw_cycle = $8, draw_day = $9,
		     draw_time = $10, referral_threshold = $11, referral_reward_count = $12,
		     is_referral_enabled = $13, is_active = $14
		 WHERE id = $1`,
		p.ID, p.Name, p.TokenPrice, p.TotalTokens, p.TotalWinners,
		p.PrizePerWinner, p.PrizeName, string(p.DrawCycle), p.DrawDay, p.DrawTime,
		p.ReferralThreshold, p.ReferralRewardCount, p.IsReferralEnabled, p.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// DeletePlan удаляет план вместе с его токенами и розыгрышами.
func (r *PostgresRepository) DeletePlan(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM lottery_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// GetPlan возвращает план по идентификатору.
func (r *PostgresRepository) GetPlan(ctx context.Context, id string) (*model.LotteryPlan, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM lottery_plans WHERE id = $1`,
		id,
	)
	return scanPlan(row)
}

// ListPlans возвращает лотерейные планы. При onlyActive=true неактивные
// планы отфильтровываются (пользовательская витрина).
func (r *PostgresRepository) ListPlans(ctx context.Context, onlyActive bool) ([]model.LotteryPlan, error) {
	query := `SELECT ` + planColumns + ` FROM lottery_plans ORDER BY token_price`
	if onlyActive {
		query = `SELECT ` + planColumns + ` FROM lottery_plans WHERE is_active ORDER BY token_price`
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select plans: %w", err)
	}
	defer rows.Close()

	var plans []model.LotteryPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return plans, nil
}

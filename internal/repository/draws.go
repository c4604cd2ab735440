package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/jackc/pgx/v5"
	"github.com/mmeshcher/lottery-system/internal/model"
)

// RunDraw проводит розыгрыш плана: детерминированно по seed выбирает
// победителей среди токенов WAITING, помечает остальные NOT_SELECTED,
// зачисляет призы на кошельки и сохраняет запись розыгрыша. Всё выполняется
// в одной транзакции под блокировкой строки плана, поэтому параллельные
// розыгрыши одного плана сериализуются.
func (r *PostgresRepository) RunDraw(ctx context.Context, drawID, planID string, seed int64) (*model.Draw, error) {
	var draw *model.Draw
	err := r.withRetry(ctx, func() error {
		var err error
		draw, err = r.runDrawTx(ctx, drawID, planID, seed)
		return err
	})
	return draw, err
}

func (r *PostgresRepository) runDrawTx(ctx context.Context, drawID, planID string, seed int64) (*model.Draw, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		totalWinners   int64
		prizePerWinner int64
	)
	err = tx.QueryRow(ctx,
		`SELECT total_winners, prize_per_winner FROM lottery_plans WHERE id = $1 FOR UPDATE`,
		planID,
	).Scan(&totalWinners, &prizePerWinner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("lock plan for update: %w", err)
	}

	// Порядок выборки фиксирован, чтобы розыгрыш воспроизводился по seed.
	rows, err := tx.Query(ctx,
		`SELECT id, user_id FROM tokens
		 WHERE plan_id = $1 AND status = $2
		 ORDER BY number
		 FOR UPDATE`,
		planID, string(model.TokenStatusWaiting),
	)
	if err != nil {
		return nil, fmt.Errorf("select waiting tokens: %w", err)
	}

	type candidate struct {
		tokenID string
		userID  string
	}

	var candidates []candidate
	for rows.Next() {
		var c candidate
		if err := rows.Scan(&c.tokenID, &c.userID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan token: %w", err)
		}
		candidates = append(candidates, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(candidates) == 0 {
		return nil, ErrNoWaitingTokens
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	winnersCount := totalWinners
	if winnersCount > int64(len(candidates)) {
		winnersCount = int64(len(candidates))
	}
	winners := candidates[:winnersCount]

	winnerIDs := make([]string, 0, len(winners))
	prizeByUser := make(map[string]int64, len(winners))
	for _, w := range winners {
		winnerIDs = append(winnerIDs, w.tokenID)
		prizeByUser[w.userID] += prizePerWinner
	}

	_, err = tx.Exec(ctx,
		`UPDATE tokens SET status = $2 WHERE id = ANY($1)`,
		winnerIDs, string(model.TokenStatusWinner),
	)
	if err != nil {
		return nil, fmt.Errorf("mark winners: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE tokens SET status = $3 WHERE plan_id = $1 AND status = $2`,
		planID, string(model.TokenStatusWaiting), string(model.TokenStatusNotSelected),
	)
	if err != nil {
		return nil, fmt.Errorf("mark losers: %w", err)
	}

	for userID, prize := range prizeByUser {
		_, err = tx.Exec(ctx,
			`UPDATE users
			 SET wallet_balance = wallet_balance + $2, total_winnings = total_winnings + $2
			 WHERE id = $1`,
			userID, prize,
		)
		if err != nil {
			return nil, fmt.Errorf("credit prize: %w", err)
		}
	}

	draw := &model.Draw{
		ID:           drawID,
		PlanID:       planID,
		Seed:         seed,
		WinnersCount: winnersCount,
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO draws (id, plan_id, seed, winners_count)
		 VALUES ($1, $2, $3, $4)
		 RETURNING executed_at`,
		draw.ID, draw.PlanID, draw.Seed, draw.WinnersCount,
	).Scan(&draw.ExecutedAt)
	if err != nil {
		return nil, fmt.Errorf("insert draw: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return draw, nil
}

// ListDraws возвращает журнал проведённых розыгрышей, новые первыми.
func (r *PostgresRepository) ListDraws(ctx context.Context) ([]model.Draw, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, plan_id, seed, winners_count, executed_at
		 FROM draws
		 ORDER BY executed_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select draws: %w", err)
	}
	defer rows.Close()

	var draws []model.Draw
	for rows.Next() {
		var d model.Draw
		if err := rows.Scan(&d.ID, &d.PlanID, &d.Seed, &d.WinnersCount, &d.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scan draw: %w", err)
		}
		draws = append(draws, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return draws, nil
}

// GetLastDraw возвращает последний розыгрыш плана.
// Если розыгрышей ещё не было, возвращает nil без ошибки.
func (r *PostgresRepository) GetLastDraw(ctx context.Context, planID string) (*model.Draw, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, plan_id, seed, winners_count, executed_at
		 FROM draws
		 WHERE plan_id = $1
		 ORDER BY executed_at DESC
		 LIMIT 1`,
		planID,
	)

	var d model.Draw
	err := row.Scan(&d.ID, &d.PlanID, &d.Seed, &d.WinnersCount, &d.ExecutedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan draw: %w", err)
	}

	return &d, nil
}

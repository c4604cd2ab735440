package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mmeshcher/lottery-system/internal/model"
)

// PurchaseTokens атомарно продаёт пользователю набор номеров плана:
// проверяет диапазон и занятость номеров, списывает стоимость с кошелька
// и сохраняет токены. При любом конфликте вся покупка откатывается.
// Первая покупка реферала в плане засчитывается пригласившему.
func (r *PostgresRepository) PurchaseTokens(ctx context.Context, userID string, tokens []model.Token) error {
	if len(tokens) == 0 {
		return nil
	}
	return r.withRetry(ctx, func() error {
		return r.purchaseTokensTx(ctx, userID, tokens)
	})
}

func (r *PostgresRepository) purchaseTokensTx(ctx context.Context, userID string, tokens []model.Token) error {
	planID := tokens[0].PlanID

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		tokenPrice  int64
		totalTokens int64
		isActive    bool
	)
	err = tx.QueryRow(ctx,
		`SELECT token_price, total_tokens, is_active FROM lottery_plans WHERE id = $1`,
		planID,
	).Scan(&tokenPrice, &totalTokens, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("select plan: %w", err)
	}
	if !isActive {
		return ErrPlanInactive
	}

	for _, t := range tokens {
		if t.Number < 1 || t.Number > totalTokens {
			return fmt.Errorf("%w: %d", ErrTokenOutOfRange, t.Number)
		}
	}

	// Блокируем строку пользователя: проверка баланса и списание должны быть сериализованы.
	var (
		balance    int64
		referredBy *string
	)
	err = tx.QueryRow(ctx,
		`SELECT wallet_balance, referred_by FROM users WHERE id = $1 FOR UPDATE`,
		userID,
	).Scan(&balance, &referredBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lock user for update: %w", err)
	}

	cost := tokenPrice * int64(len(tokens))
	if cost > balance {
		return ErrInsufficientBalance
	}

	for _, t := range tokens {
		_, err = tx.Exec(ctx,
			`INSERT INTO tokens (id, plan_id, number, status, user_id)
			 VALUES ($1, $2, $3, $4, $5)`,
			t.ID, t.PlanID, t.Number, string(model.TokenStatusWaiting), userID,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return fmt.Errorf("%w: %d", ErrTokenTaken, t.Number)
			}
			return fmt.Errorf("insert token: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET wallet_balance = wallet_balance - $2 WHERE id = $1`,
		userID, cost,
	)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}

	if referredBy != nil {
		_, err = tx.Exec(ctx,
			`INSERT INTO referral_attributions (referrer_id, referred_id, plan_id)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (referred_id, plan_id) DO NOTHING`,
			*referredBy, userID, planID,
		)
		if err != nil {
			return fmt.Errorf("insert referral attribution: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetTokensByUser возвращает токены пользователя, новые первыми.
func (r *PostgresRepository) GetTokensByUser(ctx context.Context, userID string) ([]model.Token, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.plan_id, t.number, t.status, t.user_id, u.login, t.purchased_at
		 FROM tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.user_id = $1
		 ORDER BY t.purchased_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select tokens: %w", err)
	}
	defer rows.Close()

	return collectTokens(rows)
}

// GetSoldNumbers возвращает занятые номера плана по возрастанию.
func (r *PostgresRepository) GetSoldNumbers(ctx context.Context, planID string) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT number FROM tokens WHERE plan_id = $1 ORDER BY number`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("select sold numbers: %w", err)
	}
	defer rows.Close()

	var numbers []int64
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan number: %w", err)
		}
		numbers = append(numbers, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return numbers, nil
}

// GetWinners возвращает выигравшие токены, не более limit, новые первыми.
func (r *PostgresRepository) GetWinners(ctx context.Context, limit int) ([]model.Token, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.plan_id, t.number, t.status, t.user_id, u.login, t.purchased_at
		 FROM tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.status = $1
		 ORDER BY t.purchased_at DESC
		 LIMIT $2`,
		string(model.TokenStatusWinner), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select winners: %w", err)
	}
	defer rows.Close()

	return collectTokens(rows)
}

// ListTokensByPlan возвращает все проданные токены плана (админская сводка).
func (r *PostgresRepository) ListTokensByPlan(ctx context.Context, planID string) ([]model.Token, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.plan_id, t.number, t.status, t.user_id, u.login, t.purchased_at
		 FROM tokens t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.plan_id = $1
		 ORDER BY t.number`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("select plan tokens: %w", err)
	}
	defer rows.Close()

	return collectTokens(rows)
}

func collectTokens(rows pgx.Rows) ([]model.Token, error) {
	var tokens []model.Token
	for rows.Next() {
		var t model.Token
		var status string
		if err := rows.Scan(&t.ID, &t.PlanID, &t.Number, &status, &t.UserID, &t.Username, &t.PurchasedAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		t.Status = model.TokenStatus(status)
		tokens = append(tokens, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return tokens, nil
}

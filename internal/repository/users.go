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

const userColumns = `id, login, password_hash, first_name, last_name, mobile, role,
	 wallet_balance, referral_code, referrals_count, total_winnings, referred_by, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Mobile,
		&u.Role, &u.WalletBalance, &u.ReferralCode, &u.ReferralsCount, &u.TotalWinnings,
		&u.ReferredBy, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// CreateUser создаёт нового пользователя и, если указан пригласивший,
// увеличивает его счётчик рефералов в той же транзакции.
func (r *PostgresRepository) CreateUser(ctx context.Context, u *model.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, login, password_hash, first_name, last_name, mobile, role, referral_code, referred_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Login, u.PasswordHash, u.FirstName, u.LastName, u.Mobile, string(u.Role), u.ReferralCode, u.ReferredBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if pgErr.ConstraintName == "users_referral_code_key" {
				return fmt.Errorf("%w: %s", ErrReferralCodeTaken, u.ReferralCode)
			}
			return fmt.Errorf("%w: %s", ErrUserExists, u.Login)
		}
		return fmt.Errorf("create user: %w", err)
	}

	if u.ReferredBy != nil {
		_, err = tx.Exec(ctx,
			`UPDATE users SET referrals_count = referrals_count + 1 WHERE id = $1`,
			*u.ReferredBy,
		)
		if err != nil {
			return fmt.Errorf("increment referrals count: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetUserByLogin возвращает пользователя по логину.
func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE login = $1`,
		login,
	)
	return scanUser(row)
}

// GetUserByID возвращает пользователя по идентификатору.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

// GetUserByReferralCode возвращает пользователя по реферальному коду.
func (r *PostgresRepository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE referral_code = $1`,
		code,
	)
	u, err := scanUser(row)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrReferralCodeNotFound
	}
	return u, err
}

// ListUsers возвращает всех пользователей, отсортированных по дате регистрации.
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return users, nil
}

// DeleteUser удаляет учётную запись пользователя вместе с его токенами и операциями.
func (r *PostgresRepository) DeleteUser(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetBalance возвращает текущий баланс кошелька и сумму всех невозвращённых выводов.
func (r *PostgresRepository) GetBalance(ctx context.Context, userID string) (int64, int64, error) {
	var current int64
	err := r.pool.QueryRow(ctx,
		`SELECT wallet_balance FROM users WHERE id = $1`,
		userID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrUserNotFound
		}
		return 0, 0, fmt.Errorf("select balance: %w", err)
	}

	var withdrawn int64
	err = r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0)
		 FROM transactions
		 WHERE user_id = $1 AND type = $2 AND status <> $3`,
		userID, string(model.TransactionWithdrawal), string(model.TransactionStatusRejected),
	).Scan(&withdrawn)
	if err != nil {
		return 0, 0, fmt.Errorf("sum withdrawals: %w", err)
	}

	return current, withdrawn, nil
}

// GetReferralStats возвращает реферальные счётчики пользователя по планам.
func (r *PostgresRepository) GetReferralStats(ctx context.Context, userID string) ([]model.ReferralStat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT plan_id, COUNT(*)
		 FROM referral_attributions
		 WHERE referrer_id = $1
		 GROUP BY plan_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select referral stats: %w", err)
	}
	defer rows.Close()

	var stats []model.ReferralStat
	for rows.Next() {
		var s model.ReferralStat
		if err := rows.Scan(&s.PlanID, &s.Count); err != nil {
			return nil, fmt.Errorf("scan referral stat: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return stats, nil
}

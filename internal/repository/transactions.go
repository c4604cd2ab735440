package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mmeshcher/lottery-system/internal/model"
)

const transactionColumns = `t.id, t.user_id, u.login, t.type, t.amount, t.fee, t.net_amount,
	 t.status, t.method, t.account_number, t.account_name, t.proof_image, t.external_ref, t.created_at`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var (
		t      model.Transaction
		txType string
		status string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Username, &txType, &t.Amount, &t.Fee, &t.NetAmount,
		&status, &t.Method, &t.AccountNumber, &t.AccountName, &t.ProofImage, &t.ExternalRef, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	t.Type = model.TransactionType(txType)
	t.Status = model.TransactionStatus(status)
	return &t, nil
}

// CreateDeposit сохраняет запрос на пополнение в статусе PENDING.
// Баланс не меняется до одобрения администратором.
func (r *PostgresRepository) CreateDeposit(ctx context.Context, t *model.Transaction) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transactions (id, user_id, type, amount, fee, net_amount, status, method, proof_image, external_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.UserID, string(model.TransactionDeposit), t.Amount, t.Fee, t.NetAmount,
		string(model.TransactionStatusPending), t.Method, t.ProofImage, t.ExternalRef,
	)
	if err != nil {
		return fmt.Errorf("insert deposit: %w", err)
	}
	return nil
}

// CreateWithdrawal создаёт запрос на вывод и сразу списывает полную сумму
// с кошелька. Использует блокировку строки пользователя для сериализации списаний.
func (r *PostgresRepository) CreateWithdrawal(ctx context.Context, t *model.Transaction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx,
		`SELECT wallet_balance FROM users WHERE id = $1 FOR UPDATE`,
		t.UserID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lock user for update: %w", err)
	}

	if t.Amount > balance {
		return ErrInsufficientBalance
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET wallet_balance = wallet_balance - $2 WHERE id = $1`,
		t.UserID, t.Amount,
	)
	if err != nil {
		return fmt.Errorf("debit balance: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO transactions (id, user_id, type, amount, fee, net_amount, status, method, account_number, account_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.UserID, string(model.TransactionWithdrawal), t.Amount, t.Fee, t.NetAmount,
		string(model.TransactionStatusPending), t.Method, t.AccountNumber, t.AccountName,
	)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetTransactionsByUser возвращает операции пользователя, новые первыми.
func (r *PostgresRepository) GetTransactionsByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t
		 JOIN users u ON u.id = t.user_id
		 WHERE t.user_id = $1
		 ORDER BY t.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListTransactions возвращает операции всех пользователей, при необходимости
// отфильтрованные по статусу (админская очередь рассмотрения).
func (r *PostgresRepository) ListTransactions(ctx context.Context, status model.TransactionStatus) ([]model.Transaction, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = r.pool.Query(ctx,
			`SELECT `+transactionColumns+`
			 FROM transactions t
			 JOIN users u ON u.id = t.user_id
			 ORDER BY t.created_at DESC`,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+transactionColumns+`
			 FROM transactions t
			 JOIN users u ON u.id = t.user_id
			 WHERE t.status = $1
			 ORDER BY t.created_at DESC`,
			string(status),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ApproveTransaction переводит операцию PENDING -> APPROVED. Депозит зачисляет
// netAmount на кошелёк. Проверка статуса и зачисление выполняются в одной
// транзакции под блокировкой строки, поэтому повторное одобрение не может
// зачислить деньги дважды.
func (r *PostgresRepository) ApproveTransaction(ctx context.Context, id string) error {
	return r.settleTransaction(ctx, id, model.TransactionStatusApproved)
}

// RejectTransaction переводит операцию PENDING -> REJECTED. Отклонённый вывод
// возвращает ранее списанную сумму на кошелёк.
func (r *PostgresRepository) RejectTransaction(ctx context.Context, id string) error {
	return r.settleTransaction(ctx, id, model.TransactionStatusRejected)
}

// settlementCredit возвращает сумму зачисления на кошелёк при переводе
// операции из PENDING в newStatus. Одобренный депозит зачисляет netAmount,
// отклонённый вывод возвращает ранее списанную сумму, остальные исходы
// баланс не меняют.
func settlementCredit(txType model.TransactionType, newStatus model.TransactionStatus, amount, netAmount int64) int64 {
	switch {
	case newStatus == model.TransactionStatusApproved && txType == model.TransactionDeposit:
		return netAmount
	case newStatus == model.TransactionStatusRejected && txType == model.TransactionWithdrawal:
		return amount
	}
	return 0
}

func (r *PostgresRepository) settleTransaction(ctx context.Context, id string, newStatus model.TransactionStatus) error {
	return r.withRetry(ctx, func() error {
		return r.settleTransactionTx(ctx, id, newStatus)
	})
}

func (r *PostgresRepository) settleTransactionTx(ctx context.Context, id string, newStatus model.TransactionStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		userID    string
		txType    string
		amount    int64
		netAmount int64
		status    string
	)
	err = tx.QueryRow(ctx,
		`SELECT user_id, type, amount, net_amount, status FROM transactions WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&userID, &txType, &amount, &netAmount, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("lock transaction for update: %w", err)
	}

	if model.TransactionStatus(status) != model.TransactionStatusPending {
		return ErrTransactionNotPending
	}

	_, err = tx.Exec(ctx,
		`UPDATE transactions SET status = $2 WHERE id = $1`,
		id, string(newStatus),
	)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}

	credit := settlementCredit(model.TransactionType(txType), newStatus, amount, netAmount)
	if credit > 0 {
		_, err = tx.Exec(ctx,
			`UPDATE users SET wallet_balance = wallet_balance + $2 WHERE id = $1`,
			userID, credit,
		)
		if err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func collectTransactions(rows pgx.Rows) ([]model.Transaction, error) {
	var res []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/mmeshcher/lottery-system/internal/model"
)

// CreatePaymentMethod сохраняет новый платёжный канал.
func (r *PostgresRepository) CreatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payment_methods (id, name, title, number, is_active)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.Name, m.Title, m.Number, m.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	return nil
}

// UpdatePaymentMethod обновляет платёжный канал целиком.
func (r *PostgresRepository) UpdatePaymentMethod(ctx context.Context, m *model.PaymentMethod) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE payment_methods SET name = $2, title = $3, number = $4, is_active = $5 WHERE id = $1`,
		m.ID, m.Name, m.Title, m.Number, m.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update payment method: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrMethodNotFound
	}
	return nil
}

// DeletePaymentMethod удаляет платёжный канал.
func (r *PostgresRepository) DeletePaymentMethod(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM payment_methods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrMethodNotFound
	}
	return nil
}

// ListPaymentMethods возвращает платёжные каналы. При onlyActive=true
// отключённые каналы отфильтровываются.
func (r *PostgresRepository) ListPaymentMethods(ctx context.Context, onlyActive bool) ([]model.PaymentMethod, error) {
	query := `SELECT id, name, title, number, is_active FROM payment_methods ORDER BY name`
	if onlyActive {
		query = `SELECT id, name, title, number, is_active FROM payment_methods WHERE is_active ORDER BY name`
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select payment methods: %w", err)
	}
	defer rows.Close()

	var methods []model.PaymentMethod
	for rows.Next() {
		var m model.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Title, &m.Number, &m.IsActive); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return methods, nil
}

package repository

import (
	"context"
	"fmt"
)

// GetSupportContact возвращает контакт поддержки из глобальных настроек.
func (r *PostgresRepository) GetSupportContact(ctx context.Context) (string, error) {
	var contact string
	err := r.pool.QueryRow(ctx,
		`SELECT support_contact FROM settings WHERE id = 1`,
	).Scan(&contact)
	if err != nil {
		return "", fmt.Errorf("select support contact: %w", err)
	}
	return contact, nil
}

// UpdateSupportContact сохраняет контакт поддержки в глобальных настройках.
func (r *PostgresRepository) UpdateSupportContact(ctx context.Context, contact string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE settings SET support_contact = $1 WHERE id = 1`,
		contact,
	)
	if err != nil {
		return fmt.Errorf("update support contact: %w", err)
	}
	return nil
}

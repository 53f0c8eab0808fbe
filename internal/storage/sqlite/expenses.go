package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anadi/splitledger/internal/calculator"
	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/models"
	"github.com/anadi/splitledger/internal/storage"
)

// CreateExpense persists an expense with its payers and splits in one
// transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense, payers []models.ExpensePayer, splits []models.ExpenseSplit) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertExpense(ctx, tx, expense); err != nil {
		return err
	}
	if err := insertPayersAndSplits(ctx, tx, expense.ID, payers, splits); err != nil {
		return err
	}
	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateExpense rewrites an expense and replaces its payers, splits, and
// participant list.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense, payers []models.ExpensePayer, splits []models.ExpenseSplit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET title = ?, description = ?, currency = ?, total_amount = ?,
		 split_scheme = ?, updated_at = ?, edited_flag = ?, edited_at = ?
		 WHERE id = ?`,
		expense.Title, expense.Description, string(expense.Currency), expense.TotalAmount.String(),
		string(expense.SplitScheme), expense.UpdatedAt, expense.EditedFlag, expense.EditedAt,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("expense %s: %w", expense.ID, storage.ErrNotFound)
	}

	for _, table := range []string{"expense_payers", "expense_splits", "expense_participants"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := insertPayersAndSplits(ctx, tx, expense.ID, payers, splits); err != nil {
		return err
	}
	if err := insertParticipants(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense with its payers and splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*storage.ExpenseDetail, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, container_type, group_id, direct_id, title, description, currency,
		 total_amount, split_scheme, created_by, created_at, updated_at, edited_flag, edited_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	)

	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	detail := &storage.ExpenseDetail{Expense: *expense}
	if err := s.loadExpenseDetail(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// ListExpensesForGroup returns all expenses for a group with details.
func (s *SQLiteStore) ListExpensesForGroup(ctx context.Context, groupID string) ([]storage.ExpenseDetail, error) {
	return s.listExpenses(ctx, "group_id", groupID)
}

// ListExpensesForDirect returns all expenses for a direct thread with
// details.
func (s *SQLiteStore) ListExpensesForDirect(ctx context.Context, directID string) ([]storage.ExpenseDetail, error) {
	return s.listExpenses(ctx, "direct_id", directID)
}

func (s *SQLiteStore) listExpenses(ctx context.Context, column, scopeID string) ([]storage.ExpenseDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, container_type, group_id, direct_id, title, description, currency,
		 total_amount, split_scheme, created_by, created_at, updated_at, edited_flag, edited_at
		 FROM expenses WHERE `+column+` = ? ORDER BY created_at DESC`,
		scopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var details []storage.ExpenseDetail
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		details = append(details, storage.ExpenseDetail{Expense: *expense})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range details {
		if err := s.loadExpenseDetail(ctx, &details[i]); err != nil {
			return nil, err
		}
	}
	return details, nil
}

// loadExpenseDetail fills in payers, splits, and the ordered participant
// list for an expense.
func (s *SQLiteStore) loadExpenseDetail(ctx context.Context, detail *storage.ExpenseDetail) error {
	expenseID := detail.Expense.ID

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM expense_participants WHERE expense_id = ? ORDER BY position",
		expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		detail.Expense.ParticipantIDs = append(detail.Expense.ParticipantIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate participants: %w", err)
	}

	payerRows, err := s.db.QueryContext(ctx,
		"SELECT user_id, amount FROM expense_payers WHERE expense_id = ? ORDER BY user_id",
		expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to get payers: %w", err)
	}
	defer payerRows.Close()
	for payerRows.Next() {
		payer := models.ExpensePayer{ExpenseID: expenseID}
		if err := payerRows.Scan(&payer.UserID, &payer.Amount); err != nil {
			return fmt.Errorf("failed to scan payer: %w", err)
		}
		detail.Payers = append(detail.Payers, payer)
	}
	if err := payerRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate payers: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx,
		`SELECT user_id, amount_in_expense_currency, normalized_amount, normalized_currency,
		 conversion_rate, conversion_timestamp
		 FROM expense_splits WHERE expense_id = ? ORDER BY user_id`,
		expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()
	for splitRows.Next() {
		split := models.ExpenseSplit{ExpenseID: expenseID}
		var normalizedCurrency string
		if err := splitRows.Scan(&split.UserID, &split.AmountInExpenseCurrency, &split.NormalizedAmount,
			&normalizedCurrency, &split.ConversionRate, &split.ConversionTimestamp); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		split.NormalizedCurrency = currency.Code(normalizedCurrency)
		detail.Splits = append(detail.Splits, split)
	}
	if err := splitRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}

	return nil
}

func insertExpense(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	var groupID, directID, description interface{}
	if expense.GroupID != "" {
		groupID = expense.GroupID
	}
	if expense.DirectID != "" {
		directID = expense.DirectID
	}
	if expense.Description != "" {
		description = expense.Description
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (id, container_type, group_id, direct_id, title, description,
		 currency, total_amount, split_scheme, created_by, created_at, updated_at, edited_flag, edited_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, string(expense.ContainerType), groupID, directID, expense.Title, description,
		string(expense.Currency), expense.TotalAmount.String(), string(expense.SplitScheme),
		expense.CreatedBy, expense.CreatedAt, expense.UpdatedAt, expense.EditedFlag, expense.EditedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, userID := range expense.ParticipantIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id, position) VALUES (?, ?, ?)",
			expense.ID, userID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

func insertPayersAndSplits(ctx context.Context, tx *sql.Tx, expenseID string, payers []models.ExpensePayer, splits []models.ExpenseSplit) error {
	for _, payer := range payers {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_payers (expense_id, user_id, amount) VALUES (?, ?, ?)",
			expenseID, payer.UserID, payer.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert payer: %w", err)
		}
	}

	for _, split := range splits {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_splits (expense_id, user_id, amount_in_expense_currency,
			 normalized_amount, normalized_currency, conversion_rate, conversion_timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			expenseID, split.UserID, split.AmountInExpenseCurrency.String(),
			split.NormalizedAmount.String(), string(split.NormalizedCurrency),
			split.ConversionRate.String(), split.ConversionTimestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	return nil
}

// scanExpense reads one expense row from either a *sql.Row or *sql.Rows.
func scanExpense(row interface{ Scan(...any) error }) (*models.Expense, error) {
	expense := &models.Expense{}
	var containerType, currencyStr, scheme string
	var groupID, directID, description sql.NullString

	err := row.Scan(&expense.ID, &containerType, &groupID, &directID, &expense.Title, &description,
		&currencyStr, &expense.TotalAmount, &scheme, &expense.CreatedBy,
		&expense.CreatedAt, &expense.UpdatedAt, &expense.EditedFlag, &expense.EditedAt)
	if err != nil {
		return nil, err
	}

	expense.ContainerType = models.ContainerType(containerType)
	expense.Currency = currency.Code(currencyStr)
	expense.SplitScheme = calculator.Scheme(scheme)
	expense.GroupID = groupID.String
	expense.DirectID = directID.String
	expense.Description = description.String
	return expense, nil
}

// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/anadi/splitledger/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ExpenseDetail bundles an expense with its payer and split records, which
// is the shape the balance aggregator consumes.
type ExpenseDetail struct {
	Expense models.Expense
	Payers  []models.ExpensePayer
	Splits  []models.ExpenseSplit
}

// Store defines the interface for ledger storage operations. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateUser persists a new user. The user.ID field is populated by the
	// store if empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID. Fails with ErrNotFound if absent.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// CreateGroup persists a new group with its member list.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID. Fails with ErrNotFound if absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// CreateExpense persists an expense with its payers and splits in one
	// transaction. The expense.ID field is populated by the store if empty.
	CreateExpense(ctx context.Context, expense *models.Expense, payers []models.ExpensePayer, splits []models.ExpenseSplit) error

	// GetExpense retrieves an expense with its payers and splits.
	GetExpense(ctx context.Context, expenseID string) (*ExpenseDetail, error)

	// UpdateExpense rewrites an expense and replaces its payers and splits
	// in one transaction.
	UpdateExpense(ctx context.Context, expense *models.Expense, payers []models.ExpensePayer, splits []models.ExpenseSplit) error

	// ListExpensesForGroup returns all expenses for a group, with details.
	ListExpensesForGroup(ctx context.Context, groupID string) ([]ExpenseDetail, error)

	// ListExpensesForDirect returns all expenses for a direct thread.
	ListExpensesForDirect(ctx context.Context, directID string) ([]ExpenseDetail, error)

	// CreateSettlement persists a new settlement. The settlement.ID field is
	// populated by the store if empty.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// UpdateSettlementStatus writes a settlement's status and reversal
	// audit fields.
	UpdateSettlementStatus(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsForGroup returns all settlements for a group, newest
	// first.
	ListSettlementsForGroup(ctx context.Context, groupID string) ([]models.Settlement, error)

	// ListSettlementsForDirect returns all settlements for a direct thread,
	// newest first.
	ListSettlementsForDirect(ctx context.Context, directID string) ([]models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}

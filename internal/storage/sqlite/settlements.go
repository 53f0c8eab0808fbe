package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/models"
	"github.com/anadi/splitledger/internal/storage"
)

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Status == "" {
		settlement.Status = models.SettlementCompleted
	}

	var groupID, directID, note interface{}
	if settlement.GroupID != "" {
		groupID = settlement.GroupID
	}
	if settlement.DirectID != "" {
		directID = settlement.DirectID
	}
	if settlement.Note != "" {
		note = settlement.Note
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (id, container_type, group_id, direct_id, from_user_id, to_user_id,
		 amount, currency, normalized_from_amount, normalized_to_amount, conversion_rate_from,
		 conversion_rate_to, created_at, created_by, status, reversed_at, reversed_by, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, string(settlement.ContainerType), groupID, directID,
		settlement.FromUserID, settlement.ToUserID,
		settlement.Amount.String(), string(settlement.Currency),
		settlement.NormalizedFromAmount.String(), settlement.NormalizedToAmount.String(),
		settlement.ConversionRateFrom.String(), settlement.ConversionRateTo.String(),
		settlement.CreatedAt, settlement.CreatedBy, string(settlement.Status),
		settlement.ReversedAt, settlement.ReversedBy, note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		selectSettlement+" WHERE id = ?",
		settlementID,
	)

	settlement, err := scanSettlement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement %s: %w", settlementID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// UpdateSettlementStatus writes the settlement's status and reversal audit
// fields.
func (s *SQLiteStore) UpdateSettlementStatus(ctx context.Context, settlement *models.Settlement) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET status = ?, reversed_at = ?, reversed_by = ? WHERE id = ?",
		string(settlement.Status), settlement.ReversedAt, settlement.ReversedBy, settlement.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("settlement %s: %w", settlement.ID, storage.ErrNotFound)
	}
	return nil
}

// ListSettlementsForGroup retrieves all settlements for a group, newest
// first.
func (s *SQLiteStore) ListSettlementsForGroup(ctx context.Context, groupID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx, "group_id", groupID)
}

// ListSettlementsForDirect retrieves all settlements for a direct thread,
// newest first.
func (s *SQLiteStore) ListSettlementsForDirect(ctx context.Context, directID string) ([]models.Settlement, error) {
	return s.listSettlements(ctx, "direct_id", directID)
}

func (s *SQLiteStore) listSettlements(ctx context.Context, column, scopeID string) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		selectSettlement+" WHERE "+column+" = ? ORDER BY created_at DESC",
		scopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, *settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	return settlements, nil
}

const selectSettlement = `SELECT id, container_type, group_id, direct_id, from_user_id, to_user_id,
 amount, currency, normalized_from_amount, normalized_to_amount, conversion_rate_from,
 conversion_rate_to, created_at, created_by, status, reversed_at, reversed_by, note
 FROM settlements`

func scanSettlement(row interface{ Scan(...any) error }) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var containerType, currencyStr, status string
	var groupID, directID, note sql.NullString

	err := row.Scan(&settlement.ID, &containerType, &groupID, &directID,
		&settlement.FromUserID, &settlement.ToUserID,
		&settlement.Amount, &currencyStr,
		&settlement.NormalizedFromAmount, &settlement.NormalizedToAmount,
		&settlement.ConversionRateFrom, &settlement.ConversionRateTo,
		&settlement.CreatedAt, &settlement.CreatedBy, &status,
		&settlement.ReversedAt, &settlement.ReversedBy, &note)
	if err != nil {
		return nil, err
	}

	settlement.ContainerType = models.ContainerType(containerType)
	settlement.Currency = currency.Code(currencyStr)
	settlement.Status = models.SettlementStatus(status)
	settlement.GroupID = groupID.String
	settlement.DirectID = directID.String
	settlement.Note = note.String
	return settlement, nil
}

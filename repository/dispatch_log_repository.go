package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"foodDeliveryAdmin/models"
)

// DispatchLogRepository journals coordinator commands (assign, complete, create-order).
type DispatchLogRepository struct {
	db *sql.DB
}

// NewDispatchLogRepository creates a new DispatchLogRepository.
func NewDispatchLogRepository(db *sql.DB) *DispatchLogRepository {
	return &DispatchLogRepository{db: db}
}

// Append inserts a record and returns it with its ID and created_at filled in.
func (r *DispatchLogRepository) Append(ctx context.Context, rec *models.DispatchRecord) (*models.DispatchRecord, error) {
	if rec == nil {
		return nil, errors.New("record is nil")
	}
	if rec.Outcome == "" {
		rec.Outcome = models.DispatchOK
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO dispatch_log (action, order_id, agent_id, actor, outcome, detail) VALUES (?,?,?,?,?,?)`,
		string(rec.Action), rec.OrderID, rec.AgentID, rec.Actor, string(rec.Outcome), rec.Detail)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	var out models.DispatchRecord
	var action, outcome string
	err = r.db.QueryRowContext(ctx, `SELECT id, action, order_id, agent_id, actor, outcome, detail, created_at FROM dispatch_log WHERE id = ?`, id).
		Scan(&out.ID, &action, &out.OrderID, &out.AgentID, &out.Actor, &outcome, &out.Detail, &out.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("created dispatch record not found: id=%d", id)
		}
		return nil, err
	}
	out.Action = models.DispatchAction(action)
	out.Outcome = models.DispatchOutcome(outcome)
	return &out, nil
}

// ListRecent returns a page of records, newest first. beforeID > 0 continues after
// the last ID of the previous page (keyset pagination).
func (r *DispatchLogRepository) ListRecent(ctx context.Context, limit int, beforeID int64) ([]models.DispatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rows *sql.Rows
	var err error
	if beforeID > 0 {
		rows, err = r.db.QueryContext(ctx, `SELECT id, action, order_id, agent_id, actor, outcome, detail, created_at FROM dispatch_log WHERE id < ? ORDER BY id DESC LIMIT ?`, beforeID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT id, action, order_id, agent_id, actor, outcome, detail, created_at FROM dispatch_log ORDER BY id DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDispatchRows(rows)
}

// ListByOrder returns every record for an order, oldest first.
func (r *DispatchLogRepository) ListByOrder(ctx context.Context, orderID string) ([]models.DispatchRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, `SELECT id, action, order_id, agent_id, actor, outcome, detail, created_at FROM dispatch_log WHERE order_id = ? ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDispatchRows(rows)
}

func scanDispatchRows(rows *sql.Rows) ([]models.DispatchRecord, error) {
	var out []models.DispatchRecord
	for rows.Next() {
		var rec models.DispatchRecord
		var action, outcome string
		if err := rows.Scan(&rec.ID, &action, &rec.OrderID, &rec.AgentID, &rec.Actor, &outcome, &rec.Detail, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Action = models.DispatchAction(action)
		rec.Outcome = models.DispatchOutcome(outcome)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

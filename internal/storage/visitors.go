package storage

import (
	"context"
	"fmt"
	"time"
)

// Timestamps are stored at second precision, matching what the front desk
// displays and exports.
const timePrecision = time.Second

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

const sqlInsertVisitor = `
	INSERT INTO visitors (name, email, phone, company, host, reason, checked_in_at, status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

const sqlSelectVisitors = `
	SELECT id, name, email, phone, company, host, reason, checked_in_at, checked_out_at, status
	FROM visitors`

// CreateVisitor appends a new visitor row and returns its assigned id.
// No field validation happens here; that is the lifecycle engine's job.
func (p *SQLProvider) CreateVisitor(ctx context.Context, visitor Visitor) (int64, error) {
	checkedIn := visitor.CheckedInAt.Truncate(timePrecision)

	res, err := p.db.ExecContext(ctx, sqlInsertVisitor,
		visitor.Name,
		visitor.Email,
		visitor.Phone,
		visitor.Company,
		visitor.Host,
		visitor.Reason,
		checkedIn,
		StatusPresent,
	)
	if err != nil {
		return 0, storageErr("create visitor", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("create visitor", err)
	}

	p.logger.Debug("Visitor created", "id", id)
	return id, nil
}

// ListPresent returns all present visitors, most recent check-in first.
func (p *SQLProvider) ListPresent(ctx context.Context) ([]Visitor, error) {
	var visitors []Visitor
	err := p.db.SelectContext(ctx, &visitors,
		sqlSelectVisitors+` WHERE status = ? ORDER BY checked_in_at DESC, id DESC`, StatusPresent)
	if err != nil {
		return nil, storageErr("list present visitors", err)
	}
	return visitors, nil
}

// ListAll returns every visitor row regardless of status, most recent
// check-in first.
func (p *SQLProvider) ListAll(ctx context.Context) ([]Visitor, error) {
	var visitors []Visitor
	err := p.db.SelectContext(ctx, &visitors,
		sqlSelectVisitors+` ORDER BY checked_in_at DESC, id DESC`)
	if err != nil {
		return nil, storageErr("list visitors", err)
	}
	return visitors, nil
}

// SetDeparted performs the one state transition of a visitor record as a
// single conditional UPDATE. Under a concurrent race on the same id exactly
// one caller observes count 1; everyone else gets 0.
func (p *SQLProvider) SetDeparted(ctx context.Context, id int64, at time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE visitors SET status = ?, checked_out_at = ? WHERE id = ? AND status = ?`,
		StatusDeparted, at.Truncate(timePrecision), id, StatusPresent)
	if err != nil {
		return 0, storageErr("set departed", err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("set departed", err)
	}

	p.logger.Debug("Visitor checkout update", "id", id, "rows", count)
	return count, nil
}

// DeleteDeparted removes all departed rows. The status filter guarantees
// present visitors are never deleted.
func (p *SQLProvider) DeleteDeparted(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM visitors WHERE status = ?`, StatusDeparted)
	if err != nil {
		return 0, storageErr("delete departed visitors", err)
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("delete departed visitors", err)
	}

	p.logger.Info("Purged departed visitors", "count", count)
	return count, nil
}

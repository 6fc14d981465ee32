package storage

import (
	"context"
	"time"
)

// Nonce persistence for the SQL nonce store. Nonces are the single-use ids
// embedded in self-checkout badge tokens.

func (p *SQLProvider) CreateNonce(ctx context.Context, nonce string, expiresAt time.Time) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO nonces (nonce, expires_at) VALUES (?, ?)`, nonce, expiresAt)
	if err != nil {
		return storageErr("create nonce", err)
	}
	return nil
}

func (p *SQLProvider) ExistsNonce(ctx context.Context, nonce string) (bool, error) {
	var count int
	err := p.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM nonces WHERE nonce = ? AND expires_at > ?`, nonce, time.Now())
	if err != nil {
		return false, storageErr("check nonce", err)
	}
	return count > 0, nil
}

// ConsumeNonce deletes the nonce and reports whether it existed. The delete
// is the atomicity point: two concurrent consumers of the same nonce see one
// true and one false.
func (p *SQLProvider) ConsumeNonce(ctx context.Context, nonce string) (bool, error) {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM nonces WHERE nonce = ? AND expires_at > ?`, nonce, time.Now())
	if err != nil {
		return false, storageErr("consume nonce", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("consume nonce", err)
	}
	return count > 0, nil
}

func (p *SQLProvider) ExpireNonces(ctx context.Context, now time.Time) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM nonces WHERE expires_at <= ?`, now)
	if err != nil {
		return storageErr("expire nonces", err)
	}
	return nil
}

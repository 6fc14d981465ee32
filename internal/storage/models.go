package storage

import "time"

type VisitorStatus string

const (
	StatusPresent  VisitorStatus = "present"
	StatusDeparted VisitorStatus = "departed"
)

// Visitor is one row of the visitor log. Rows are append-only except for the
// single present -> departed transition set by SetDeparted.
type Visitor struct {
	ID           int64         `db:"id"`
	Name         string        `db:"name"`
	Email        string        `db:"email"`
	Phone        string        `db:"phone"`
	Company      string        `db:"company"`
	Host         string        `db:"host"`
	Reason       string        `db:"reason"`
	CheckedInAt  time.Time     `db:"checked_in_at"`
	CheckedOutAt *time.Time    `db:"checked_out_at"`
	Status       VisitorStatus `db:"status"`
}

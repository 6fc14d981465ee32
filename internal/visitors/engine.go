package visitors

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"visitor-registration/internal/storage"
)

// Staff-facing search results are capped so the checkout list stays
// scannable. This is presentation policy, not a storage limit.
const searchLimit = 5

// Engine implements the visitor presence lifecycle: registration, search,
// checkout and reporting. All business rules live here; the storage provider
// only moves rows.
type Engine struct {
	store  storage.Provider
	logger *slog.Logger
}

func NewEngine(store storage.Provider) *Engine {
	return &Engine{
		store:  store,
		logger: slog.With("component", "visitors"),
	}
}

// Registration carries the raw form field values of a check-in.
type Registration struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Host    string
	Reason  string
}

// RegisterResult is returned to the caller for the confirmation display.
// The name is the trimmed value as stored.
type RegisterResult struct {
	ID   int64
	Name string
}

// Register validates the submitted fields, collects every violation into a
// single ValidationError, and on success stores the trimmed record with the
// current wall-clock second as check-in time.
func (e *Engine) Register(ctx context.Context, reg Registration) (*RegisterResult, error) {
	if problems := validateRegistration(reg); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	visitor := storage.Visitor{
		Name:        strings.TrimSpace(reg.Name),
		Email:       strings.TrimSpace(reg.Email),
		Phone:       strings.TrimSpace(reg.Phone),
		Company:     strings.TrimSpace(reg.Company),
		Host:        strings.TrimSpace(reg.Host),
		Reason:      strings.TrimSpace(reg.Reason),
		CheckedInAt: time.Now(),
	}

	id, err := e.store.CreateVisitor(ctx, visitor)
	if err != nil {
		return nil, err
	}

	e.logger.Info("Visitor registered", "id", id, "host", visitor.Host)
	return &RegisterResult{ID: id, Name: visitor.Name}, nil
}

// Search finds present visitors whose name, email or phone contains the
// query, case-insensitively. Queries shorter than 2 trimmed characters are
// rejected before the store is touched. At most 5 matches are returned,
// most recent check-in first. No match is a valid, empty result.
func (e *Engine) Search(ctx context.Context, query string) ([]storage.Visitor, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < 2 {
		return nil, &ValidationError{Problems: []string{"search query must be at least 2 characters"}}
	}

	present, err := e.store.ListPresent(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := make([]storage.Visitor, 0, searchLimit)
	for _, v := range present {
		if strings.Contains(strings.ToLower(v.Name), needle) ||
			strings.Contains(strings.ToLower(v.Email), needle) ||
			strings.Contains(strings.ToLower(v.Phone), needle) {
			matches = append(matches, v)
			if len(matches) == searchLimit {
				break
			}
		}
	}

	return matches, nil
}

// Checkout transitions the record to departed. The returned bool is false
// when no present row matched the id: the visitor already departed, or the
// caller held stale state. That outcome is a no-op, not an error; the caller
// should tell the operator to refresh and retry. The visitor's name for the
// farewell message must travel with the caller from the search step.
func (e *Engine) Checkout(ctx context.Context, id int64) (bool, error) {
	count, err := e.store.SetDeparted(ctx, id, time.Now())
	if err != nil {
		return false, err
	}

	if count == 0 {
		e.logger.Debug("Checkout was a no-op", "id", id)
		return false, nil
	}

	e.logger.Info("Visitor checked out", "id", id)
	return true, nil
}

// Counts holds the dashboard aggregates. Departed is derived, never stored.
type Counts struct {
	Total    int
	Active   int
	Departed int
}

func (e *Engine) ActiveCount(ctx context.Context) (int, error) {
	present, err := e.store.ListPresent(ctx)
	if err != nil {
		return 0, err
	}
	return len(present), nil
}

func (e *Engine) TotalCount(ctx context.Context) (int, error) {
	all, err := e.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

func (e *Engine) CountVisitors(ctx context.Context) (Counts, error) {
	total, err := e.TotalCount(ctx)
	if err != nil {
		return Counts{}, err
	}
	active, err := e.ActiveCount(ctx)
	if err != nil {
		return Counts{}, err
	}
	return Counts{
		Total:    total,
		Active:   active,
		Departed: total - active,
	}, nil
}

// StatusFilter selects which rows a history listing includes.
type StatusFilter string

const (
	FilterAll      StatusFilter = "all"
	FilterPresent  StatusFilter = "present"
	FilterDeparted StatusFilter = "departed"
)

// ParseStatusFilter maps a raw query/CLI value to a StatusFilter,
// defaulting to all.
func ParseStatusFilter(s string) StatusFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "active":
		return FilterPresent
	case "departed":
		return FilterDeparted
	default:
		return FilterAll
	}
}

// History returns the full visitor log with the status filter applied on top
// of the read, most recent check-in first.
func (e *Engine) History(ctx context.Context, filter StatusFilter) ([]storage.Visitor, error) {
	all, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if filter == FilterAll || filter == "" {
		return all, nil
	}

	want := storage.StatusPresent
	if filter == FilterDeparted {
		want = storage.StatusDeparted
	}

	filtered := make([]storage.Visitor, 0, len(all))
	for _, v := range all {
		if v.Status == want {
			filtered = append(filtered, v)
		}
	}
	return filtered, nil
}

// PurgeDeparted irreversibly deletes all departed records and returns how
// many were removed. Present records are never deleted. Confirming with the
// operator is the caller's responsibility.
func (e *Engine) PurgeDeparted(ctx context.Context) (int64, error) {
	count, err := e.store.DeleteDeparted(ctx)
	if err != nil {
		return 0, err
	}
	e.logger.Info("Departed visitors purged", "count", count)
	return count, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/workstream-hq/hr-attend-api/internal/models"
)

// HolidayRepository is the read-only view onto the holiday calendar.
type HolidayRepository struct {
	db *sqlx.DB
}

// NewHolidayRepository constructs the repository.
func NewHolidayRepository(db *sqlx.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

// FindActiveByDate returns the active holiday registered on the day, or nil
// when the day is a working day.
func (r *HolidayRepository) FindActiveByDate(ctx context.Context, date time.Time) (*models.Holiday, error) {
	var holiday models.Holiday
	err := r.db.GetContext(ctx, &holiday,
		`SELECT id, date, name, active FROM holidays WHERE date = $1 AND active = TRUE`, date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find holiday: %w", err)
	}
	return &holiday, nil
}

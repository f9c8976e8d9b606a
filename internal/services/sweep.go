package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"clubbook_echo/internal/models"
)

// SweepActivityStatuses flips the stored status of one-time activities whose
// window has begun or elapsed. Recurring activities derive their status at
// read time and are never swept. The sweep is idempotent and has no capacity
// impact, so it needs no isolation beyond ordinary row updates.
func SweepActivityStatuses(ctx context.Context, db *gorm.DB) (int64, error) {
	now := time.Now()
	var updated int64

	res := db.WithContext(ctx).Model(&models.Activity{}).
		Where("kind = ? AND status NOT IN ? AND end_date_time < ?",
			models.ActivityKindOneTime,
			[]models.ActivityStatus{models.ActivityStatusCompleted, models.ActivityStatusCanceled},
			now).
		Update("status", models.ActivityStatusCompleted)
	if res.Error != nil {
		return updated, res.Error
	}
	updated += res.RowsAffected

	res = db.WithContext(ctx).Model(&models.Activity{}).
		Where("kind = ? AND status = ? AND start_date_time <= ? AND end_date_time >= ?",
			models.ActivityKindOneTime, models.ActivityStatusUpcoming, now, now).
		Update("status", models.ActivityStatusLive)
	if res.Error != nil {
		return updated, res.Error
	}
	updated += res.RowsAffected

	return updated, nil
}

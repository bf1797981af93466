package availability

import (
	"math"
	"time"

	"github.com/psiconecta/booking-api/internal/model"
)

// BucketByDay re-buckets open slots into 7 calendar days starting today,
// relative to now's location. Bucket inclusion is date-only except for
// today's bucket, which keeps only strictly future instants. Slots dated
// 7 or more days out, or in the past, land nowhere.
func BucketByDay(slots []model.Slot, now time.Time) model.WeeklySlots {
	var week model.WeeklySlots
	today := startOfDay(now)

	for _, slot := range slots {
		day := startOfDay(slot.Datetime.In(now.Location()))
		idx := int(math.Round(day.Sub(today).Hours() / 24))
		if idx < 0 || idx >= len(week) {
			continue
		}
		if idx == 0 && !slot.Datetime.After(now) {
			continue
		}
		week[idx] = append(week[idx], slot)
	}
	return week
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Gantry/internal/domain"
)

// cronParser — парсер cron-выражений (классические 5 полей).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextDue вычисляет следующее время срабатывания schedule-триггера.
// Учитывает timezone триггера; невалидный timezone откатывается на UTC.
func NextDue(trig *domain.ScheduleTrigger, from time.Time) (time.Time, error) {
	loc := time.UTC
	if trig.Timezone != "" {
		if l, err := time.LoadLocation(trig.Timezone); err == nil {
			loc = l
		}
	}

	schedule, err := cronParser.Parse(trig.Cron)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", trig.Cron, err)
	}

	next := schedule.Next(from.In(loc))
	return next.UTC(), nil
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(cronExpr string) error {
	_, err := cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}

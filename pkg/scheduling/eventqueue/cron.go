package eventqueue

import (
	"fmt"

	eqerrors "github.com/vnykmshr/eventq/pkg/common/errors"
	"github.com/vnykmshr/eventq/pkg/common/validation"
)

// AddCron accepts standard five-field expressions, an optional leading
// seconds field, and descriptors such as "@hourly" or "@every 90s".
// Expressions are evaluated in the configured Location.
func (q *queue) AddCron(expr string, callback Callback, payload any) (ID, error) {
	if err := validation.RequireNotEmpty(module, "cron_expr", expr); err != nil {
		return "", err
	}

	schedule, err := q.cronParser.Parse(expr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", eqerrors.NewArgumentError(module, "cron_expr", expr, "cannot be parsed"), err)
	}

	next := schedule.Next(q.clock.Now().In(q.location))
	if next.IsZero() {
		return "", eqerrors.NewArgumentError(module, "cron_expr", expr, "has no future occurrence")
	}

	return q.add(ID(q.newID()), callback, payload, next, schedule)
}

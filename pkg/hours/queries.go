package hours

import (
	"fmt"
	"time"

	"github.com/TechXTT/workhours/internal/core"
)

// TotalScale multiplies the summed seconds reported by Total. It is kept for
// compatibility with existing consumers of the figure; Salary works on raw
// seconds.
const TotalScale = 60 * 60

const (
	insertLog = `INSERT INTO working_log (employee_id, time_in_seconds, logged_at) VALUES (?, ?, ?)`

	upsertRate = `INSERT INTO employee_rates (employee_id, hour_rate) VALUES (?, ?)
ON CONFLICT (employee_id) DO UPDATE SET hour_rate = excluded.hour_rate`
)

func totalQuery(employeeID int64) *core.QueryBuilder {
	return core.Select(fmt.Sprintf("COALESCE(SUM(time_in_seconds), 0) * %d", TotalScale)).
		From("working_log").
		Where("employee_id = ?", employeeID)
}

// payslipQuery pairs the in-range sum with the current rate. Without a rate
// row the cross join yields nothing.
func payslipQuery(employeeID int64, from, to time.Time) *core.QueryBuilder {
	worked := core.Select("COALESCE(SUM(time_in_seconds), 0) AS total_seconds").
		From("working_log").
		Where("employee_id = ?", employeeID).
		Where("logged_at >= ?", from).
		Where("logged_at <= ?", to)
	rate := core.Select("hour_rate").
		From("employee_rates").
		Where("employee_id = ?", employeeID).
		Limit(1)

	return core.Select("x.total_seconds", "y.hour_rate", "x.total_seconds * y.hour_rate").
		FromSub(worked, "x").
		CrossJoin(rate, "y")
}

func rateQuery(employeeID int64) *core.QueryBuilder {
	return core.Select("hour_rate").
		From("employee_rates").
		Where("employee_id = ?", employeeID)
}

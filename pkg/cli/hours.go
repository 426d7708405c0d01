package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/TechXTT/workhours/pkg/hours"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func parseEmployee(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid employee id %q", s)
	}
	return id, nil
}

// parseSeconds accepts a number of seconds or a duration such as 1h30m.
func parseSeconds(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return int64(d / time.Second), nil
}

// withManager opens the database and a manager for the employee in args[0].
func withManager(a *app, cmd *cobra.Command, args []string, fn func(m *hours.Manager) error) error {
	id, err := parseEmployee(args[0])
	if err != nil {
		return err
	}
	db, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := db.Manager(cmd.Context(), id)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func newLogCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "log <employee-id> <seconds|duration>",
		Short:   "Record worked time",
		Example: "  workhours log 7 3600\n  workhours log 7 1h30m",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds, err := parseSeconds(args[1])
			if err != nil {
				return err
			}
			return withManager(a, cmd, args, func(m *hours.Manager) error {
				if err := m.Log(cmd.Context(), seconds); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "logged %ds for employee %d\n", seconds, m.EmployeeID())
				return nil
			})
		},
	}
}

func newTotalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "total <employee-id>",
		Short: "Print the employee's total logged time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(a, cmd, args, func(m *hours.Manager) error {
				total, err := m.Total(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), total)
				return nil
			})
		},
	}
}

func newSalaryCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "salary <employee-id>",
		Short: "Compute the salary for a date range",
		Long: `Compute the salary for the time logged between --from and --to.
Both dates are inclusive and interpreted in UTC. Without flags the range runs
from the start of the current month until now.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := salaryRange(from, to, time.Now().UTC())
			if err != nil {
				return err
			}
			return withManager(a, cmd, args, func(m *hours.Manager) error {
				slip, err := m.Payslip(cmd.Context(), start, end)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "employee %d: %ds at %s/h = %s\n",
					slip.EmployeeID, slip.Seconds, slip.Rate, slip.Amount)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day of the range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day of the range (YYYY-MM-DD)")
	return cmd
}

// salaryRange resolves the --from/--to flags. A given end date covers the
// whole day.
func salaryRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
		}
		start = t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}

func newRateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Manage hourly rates",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <employee-id> <rate>",
		Short: "Set the employee's hourly rate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployee(args[0])
			if err != nil {
				return err
			}
			rate, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid rate %q", args[1])
			}
			db, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			return db.Rates().SetRate(cmd.Context(), id, rate)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <employee-id>",
		Short: "Print the employee's hourly rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEmployee(args[0])
			if err != nil {
				return err
			}
			db, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			rate, err := db.Rates().Rate(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rate)
			return nil
		},
	})
	return cmd
}

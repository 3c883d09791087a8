package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/protodo/internal/app"
	"github.com/sandeepkv93/protodo/internal/calendar"
	"github.com/sandeepkv93/protodo/internal/model"
)

func (r *runner) calendarCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show a month with the number of tasks due per day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := calendar.Current(time.Now())
			if month != "" {
				parsed, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("%w: month must be YYYY-MM", model.ErrValidation)
				}
				m = calendar.Month{Year: parsed.Year(), Month: parsed.Month()}
			}
			return r.withService(cmd, func(_ context.Context, svc *app.Service) error {
				tasks := svc.Tasks.List()
				out := cmd.OutOrStdout()
				grid := calendar.Grid(m, tasks)
				fmt.Fprint(out, renderMonth(grid))
				for _, d := range grid.Days {
					if d.Count == 0 {
						continue
					}
					fmt.Fprintf(out, "\n%s\n", d.Date)
					for _, t := range calendar.TasksOn(d.Date, tasks) {
						printTask(out, t)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show, YYYY-MM (default: current)")
	return cmd
}

// renderMonth draws the grid with Sunday first; days with tasks carry a
// "+n" suffix.
func renderMonth(g calendar.MonthGrid) string {
	var b strings.Builder
	b.WriteString(g.Month.Label() + "\n")
	b.WriteString(" Sun   Mon   Tue   Wed   Thu   Fri   Sat\n")
	for _, week := range g.Weeks() {
		cells := make([]string, 0, 7)
		for _, d := range week {
			cell := ""
			if d != nil {
				cell = fmt.Sprintf("%2d", d.Number)
				if d.Count > 0 {
					cell += fmt.Sprintf("+%d", d.Count)
				}
			}
			cells = append(cells, fmt.Sprintf("%-5s", cell))
		}
		b.WriteString(strings.TrimRight(" "+strings.Join(cells, " "), " ") + "\n")
	}
	return b.String()
}

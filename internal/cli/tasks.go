package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/protodo/internal/app"
	"github.com/sandeepkv93/protodo/internal/commands"
	"github.com/sandeepkv93/protodo/internal/model"
	"github.com/sandeepkv93/protodo/internal/projection"
	"github.com/sandeepkv93/protodo/internal/voice"
)

type taskFlags struct {
	due      string
	priority string
	cats     string
	repeat   string
	subtasks []string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.due, "due", "", "due date, YYYY-MM-DD or YYYY-MM-DDTHH:MM")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "low, medium or high (suggested from the text when omitted)")
	cmd.Flags().StringVar(&f.cats, "cat", "", "comma separated categories")
	cmd.Flags().StringVar(&f.repeat, "repeat", "", "none, daily, weekly or monthly")
}

func (r *runner) addCmd() *cobra.Command {
	var flags taskFlags
	var useVoice bool
	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: "Add a task",
		Example: `  protodo add "Pay rent" --due 2024-03-01 --repeat monthly
  protodo add Plan trip --cat travel --sub "Book hotel" --sub Pack
  speech-to-text | protodo add --voice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if useVoice {
				transcript, err := voice.FromInput(r.opts.Stdin).Transcribe(cmd.Context())
				if err != nil {
					return fmt.Errorf("voice input: %w", err)
				}
				text = transcript
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("task text is required")
			}
			add := &commands.AddArgs{Text: text, Subtasks: flags.subtasks}
			if err := flags.applyAdd(add); err != nil {
				return err
			}
			return r.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				res, err := svc.Dispatch(ctx, commands.Command{Type: commands.TypeAdd, Add: add})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]\n", res.Message, res.Task.ID)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringArrayVar(&flags.subtasks, "sub", nil, "subtask text (repeatable)")
	cmd.Flags().BoolVar(&useVoice, "voice", false, "read the task text as a transcript line from stdin")
	return cmd
}

func (f taskFlags) applyAdd(add *commands.AddArgs) error {
	var err error
	if f.due != "" {
		if add.Due, err = model.ParseDue(f.due); err != nil {
			return err
		}
	}
	if f.priority != "" {
		if add.Priority, err = model.ParsePriority(f.priority); err != nil {
			return err
		}
	}
	if f.cats != "" {
		add.Categories = model.SplitCategories(f.cats)
	}
	if f.repeat != "" {
		if add.Repeat, err = model.ParseRepeat(f.repeat); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) listCmd() *cobra.Command {
	var filter, sortKey, query string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withService(cmd, func(_ context.Context, svc *app.Service) error {
				cfg := svc.Config()
				if filter == "" {
					filter = cfg.DefaultFilter
				}
				if sortKey == "" {
					sortKey = cfg.DefaultSort
				}
				f, err := projection.ParseFilter(filter)
				if err != nil {
					return err
				}
				k, err := projection.ParseSort(sortKey)
				if err != nil {
					return err
				}
				tasks := projection.Project(svc.Tasks.List(), f, query, k)
				out := cmd.OutOrStdout()
				if len(tasks) == 0 {
					fmt.Fprintln(out, "No tasks.")
					return nil
				}
				for _, t := range tasks {
					printTask(out, t)
				}
				done, total, pct := svc.Tasks.Progress()
				fmt.Fprintf(out, "\n%d/%d done (%d%%)\n", done, total, pct)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "one of "+joinNames(projection.Filters()))
	cmd.Flags().StringVar(&sortKey, "sort", "", "one of "+joinNames(projection.SortKeys()))
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive search over text, categories and subtasks")
	return cmd
}

func joinNames[T ~string](names []T) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}

func printTask(w io.Writer, t model.Task) {
	check := " "
	if t.Completed {
		check = "x"
	}
	line := fmt.Sprintf("%s [%s] %-6s %s", t.ID, check, t.Priority, t.Text)
	if t.Due != nil {
		line += " due:" + t.Due.UTC().Format("2006-01-02")
	}
	if t.IsRepeating() {
		line += " repeat:" + string(t.Repeat)
	}
	if len(t.Categories) > 0 {
		line += " cat:" + strings.Join(t.Categories, ",")
	}
	fmt.Fprintln(w, line)
	for _, st := range t.Subtasks {
		mark := " "
		if st.Done {
			mark = "x"
		}
		fmt.Fprintf(w, "    %s [%s] %s\n", st.ID, mark, st.Text)
	}
}

// dispatchCmd builds a command whose positional args become one palette
// command, e.g. "done <id>".
func (r *runner) dispatchCmd(use, short string, aliases []string, args cobra.PositionalArgs, build func([]string) commands.Command) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		Args:    args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			return r.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				res, err := svc.Dispatch(ctx, build(argv))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}
}

func (r *runner) doneCmd() *cobra.Command {
	return r.dispatchCmd("done <id>", "Toggle a task between open and completed", []string{"toggle"}, cobra.ExactArgs(1),
		func(args []string) commands.Command {
			return commands.Command{Type: commands.TypeToggle, Target: &commands.TargetArgs{ID: args[0]}}
		})
}

func (r *runner) subtaskCmd() *cobra.Command {
	return r.dispatchCmd("subtask <task-id> <subtask-id>", "Toggle a subtask", nil, cobra.ExactArgs(2),
		func(args []string) commands.Command {
			return commands.Command{Type: commands.TypeSubtask, Target: &commands.TargetArgs{ID: args[0], SubtaskID: args[1]}}
		})
}

func (r *runner) deleteCmd() *cobra.Command {
	return r.dispatchCmd("delete <id>", "Delete a task", []string{"rm"}, cobra.ExactArgs(1),
		func(args []string) commands.Command {
			return commands.Command{Type: commands.TypeDelete, Target: &commands.TargetArgs{ID: args[0]}}
		})
}

func (r *runner) clearCmd() *cobra.Command {
	var yes bool
	cmd := r.dispatchCmd("clear", "Delete every task", nil, cobra.NoArgs,
		func([]string) commands.Command { return commands.Command{Type: commands.TypeClear} })
	run := cmd.RunE
	cmd.RunE = func(c *cobra.Command, args []string) error {
		if !yes {
			return errors.New("refusing to delete all tasks without --yes")
		}
		return run(c, args)
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting all tasks")
	return cmd
}

func (r *runner) editCmd() *cobra.Command {
	var flags taskFlags
	var text string
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's text, due date, priority, categories or repeat rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edit := &commands.EditArgs{ID: args[0], ClearDue: clearDue}
			fs := cmd.Flags()
			if fs.Changed("text") {
				edit.Text = &text
			}
			if flags.due != "" {
				due, err := model.ParseDue(flags.due)
				if err != nil {
					return err
				}
				edit.Due = due
			}
			if fs.Changed("priority") {
				p, err := model.ParsePriority(flags.priority)
				if err != nil {
					return err
				}
				edit.Priority = &p
			}
			if fs.Changed("cat") {
				edit.Categories = model.SplitCategories(flags.cats)
				if edit.Categories == nil {
					edit.Categories = []string{}
				}
			}
			if fs.Changed("repeat") {
				rep, err := model.ParseRepeat(flags.repeat)
				if err != nil {
					return err
				}
				edit.Repeat = &rep
			}
			return r.withService(cmd, func(ctx context.Context, svc *app.Service) error {
				res, err := svc.Dispatch(ctx, commands.Command{Type: commands.TypeEdit, Edit: edit})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&text, "text", "", "new task text")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	return cmd
}

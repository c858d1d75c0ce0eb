package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-taskboard/internal/client"
	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/tasklist"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage your tasks",
	}
	cmd.AddCommand(
		listTasksCmd(),
		showTaskCmd(),
		createTaskCmd(),
		updateTaskCmd(),
		deleteTaskCmd(),
	)
	return cmd
}

func listTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks one page at a time",
		Args:  cobra.NoArgs,
		RunE:  runListTasks,
	}

	cmd.Flags().String("filter", string(tasklist.FilterNone), "Priority filter: none, Low, Medium or High")
	cmd.Flags().String("sort", string(tasklist.SortNone), "Sort by: none, dueDate or priority")
	cmd.Flags().String("order", string(tasklist.OrderAsc), "Sort order: asc or desc")
	cmd.Flags().Int("page", 1, "Page to show, starting at 1")
	cmd.Flags().Bool("json", false, "Output the page as JSON")
	return cmd
}

func runListTasks(cmd *cobra.Command, _ []string) error {
	app, err := authenticatedApp(cmd)
	if err != nil {
		return err
	}

	rawFilter, _ := cmd.Flags().GetString("filter")
	rawSort, _ := cmd.Flags().GetString("sort")
	rawOrder, _ := cmd.Flags().GetString("order")
	page, _ := cmd.Flags().GetInt("page")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var opts tasklist.Options
	if opts.Filter, err = tasklist.ParseFilter(rawFilter); err != nil {
		return err
	}
	if opts.Sort, err = tasklist.ParseSortField(rawSort); err != nil {
		return err
	}
	if opts.Order, err = tasklist.ParseSortOrder(rawOrder); err != nil {
		return err
	}

	if err = refreshTasks(cmd, app); err != nil {
		return err
	}

	board := app.Tasks.Board()
	board.SetOptions(opts)
	board.SetPage(page - 1)
	view := board.View()

	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"tasks":     view.Items,
			"page":      view.Page + 1,
			"pageCount": view.PageCount,
			"total":     view.Total,
		})
	}
	writeView(cmd.OutOrStdout(), view)
	return nil
}

func refreshTasks(cmd *cobra.Command, app *App) error {
	err := app.Tasks.Refresh(cmd.Context())
	if err == nil {
		return nil
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("failed to fetch tasks: %s", apiErr.Message)
	}
	return fmt.Errorf("failed to fetch tasks: %w", err)
}

func showTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show every field of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := authenticatedApp(cmd)
			if err != nil {
				return err
			}
			if err = refreshTasks(cmd, app); err != nil {
				return err
			}

			for _, task := range app.Tasks.Board().Cache() {
				if task.ID != args[0] {
					continue
				}
				if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(task)
				}
				writeTaskDetail(cmd.OutOrStdout(), task)
				return nil
			}
			return fmt.Errorf("task not found: %s", args[0])
		},
	}

	cmd.Flags().Bool("json", false, "Output the task as JSON")
	return cmd
}

func createTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := authenticatedApp(cmd)
			if err != nil {
				return err
			}

			var input client.CreateTaskInput
			input.Title, _ = cmd.Flags().GetString("title")
			input.Description, _ = cmd.Flags().GetString("description")
			input.Tags, _ = cmd.Flags().GetStringSlice("tags")
			priority, _ := cmd.Flags().GetString("priority")
			input.Priority = models.Priority(priority)
			status, _ := cmd.Flags().GetString("status")
			input.Status = models.Status(status)
			rawDue, _ := cmd.Flags().GetString("due")
			if input.DueAt, err = parseDue(rawDue); err != nil {
				return err
			}
			if err = validateTaskText(&input.Title, &input.Description); err != nil {
				return err
			}

			task, err := app.Tasks.Create(cmd.Context(), input)
			if err = mutationError(app, "create", err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Created task:")
			writeTask(cmd.OutOrStdout(), *task)
			return nil
		},
	}

	cmd.Flags().String("title", "", "Title (required)")
	cmd.Flags().String("due", "", "Due date (required)")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("priority", string(models.PriorityMedium), "Priority: Low, Medium or High")
	cmd.Flags().String("status", string(models.StatusTodo), "Status: todo, in-progress, review or done")
	cmd.Flags().StringSlice("tags", nil, "Comma separated tags")
	markRequired(cmd, "title", "due")
	return cmd
}

func updateTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := authenticatedApp(cmd)
			if err != nil {
				return err
			}

			var input client.UpdateTaskInput
			flags := cmd.Flags()
			if flags.Changed("title") {
				title, _ := flags.GetString("title")
				input.Title = &title
			}
			if flags.Changed("description") {
				description, _ := flags.GetString("description")
				input.Description = &description
			}
			if flags.Changed("priority") {
				raw, _ := flags.GetString("priority")
				priority := models.Priority(raw)
				input.Priority = &priority
			}
			if flags.Changed("status") {
				raw, _ := flags.GetString("status")
				status := models.Status(raw)
				input.Status = &status
			}
			if flags.Changed("due") {
				raw, _ := flags.GetString("due")
				due, err := parseDue(raw)
				if err != nil {
					return err
				}
				input.DueAt = &due
			}
			if flags.Changed("tags") {
				tags, _ := flags.GetStringSlice("tags")
				input.Tags = &tags
			}

			if err = validateTaskText(input.Title, input.Description); err != nil {
				return err
			}

			task, err := app.Tasks.Update(cmd.Context(), args[0], input)
			if err = mutationError(app, "update", err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Updated task:")
			writeTask(cmd.OutOrStdout(), *task)
			return nil
		},
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("due", "", "New due date")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("priority", "", "New priority")
	cmd.Flags().String("status", "", "New status")
	cmd.Flags().StringSlice("tags", nil, "Replace tags")
	return cmd
}

func deleteTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := authenticatedApp(cmd)
			if err != nil {
				return err
			}

			err = app.Tasks.Delete(cmd.Context(), args[0])
			if err = mutationError(app, "delete", err); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}

// mutationError reports a failed mutation. A mutation the server accepted
// whose follow-up refresh failed only gets a warning.
func mutationError(app *App, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, tasklist.ErrRefreshFailed) {
		app.Logger.Warn().
			Err(err).
			Str("op", op).
			Msg("task saved but the list could not be refreshed")
		return nil
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("failed to %s task: %s", op, apiErr.Message)
	}
	return fmt.Errorf("failed to %s task: %w", op, err)
}

// validateTaskText checks the length limits before anything is sent.
// Nil fields are skipped.
func validateTaskText(title, description *string) error {
	if title != nil && utf8.RuneCountInString(*title) > models.MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", models.MaxTitleLength)
	}
	if description != nil && utf8.RuneCountInString(*description) > models.MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", models.MaxDescriptionLength)
	}
	return nil
}

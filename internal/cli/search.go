package cli

import (
	"bufio"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/tasklist"
)

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search tasks as you type",
		Long: `Search reads one query per line from stdin and prints the matches once
the input pauses. Matches are listed most recent first. An empty line lists
every task.`,
		Args: cobra.NoArgs,
		RunE: runSearch,
	}

	cmd.Flags().String("by", string(tasklist.SearchByTitle), "Field to search: title or description")
	return cmd
}

func runSearch(cmd *cobra.Command, _ []string) error {
	app, err := authenticatedApp(cmd)
	if err != nil {
		return err
	}

	rawField, _ := cmd.Flags().GetString("by")
	field, err := tasklist.ParseSearchField(rawField)
	if err != nil {
		return err
	}

	if err = refreshTasks(cmd, app); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	searcher := tasklist.NewSearcher(app.Tasks.Board(), field, app.Config.SearchDebounce, func(query string, results []models.Task) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "%q: %d match(es)\n", query, len(results))
		writeTasks(out, results)
	})
	defer searcher.Close()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		searcher.SetQuery(scanner.Text())
	}
	if err = scanner.Err(); err != nil {
		return fmt.Errorf("failed to read queries: %w", err)
	}

	searcher.Flush()
	return nil
}

package tasklist

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/adanyl0v/go-taskboard/internal/debounce"
	"github.com/adanyl0v/go-taskboard/internal/models"
)

type SearchField string

const (
	SearchByTitle       SearchField = "title"
	SearchByDescription SearchField = "description"
)

func ParseSearchField(s string) (SearchField, error) {
	switch f := SearchField(s); f {
	case SearchByTitle, SearchByDescription:
		return f, nil
	default:
		return "", fmt.Errorf("unknown search field: %s", s)
	}
}

// Search matches the query against the raw cache, most recent task first.
// An empty query returns every task.
func Search(cache []models.Task, query string, field SearchField) []models.Task {
	query = strings.ToLower(strings.TrimLeftFunc(query, unicode.IsSpace))

	out := make([]models.Task, 0, len(cache))
	for _, task := range cache {
		if query == "" || strings.Contains(strings.ToLower(searchText(task, field)), query) {
			out = append(out, task)
		}
	}
	slices.Reverse(out)
	return out
}

func searchText(task models.Task, field SearchField) string {
	if field == SearchByDescription {
		return task.Description
	}
	return task.Title
}

// Searcher runs Search over the board cache once the query stops changing.
type Searcher struct {
	board     *Board
	field     SearchField
	debouncer *debounce.Debouncer
	onResult  func(query string, results []models.Task)
}

func NewSearcher(board *Board, field SearchField, delay time.Duration, onResult func(string, []models.Task)) *Searcher {
	return &Searcher{
		board:     board,
		field:     field,
		debouncer: debounce.New(delay),
		onResult:  onResult,
	}
}

// SetQuery replaces the pending query. Only the last query of a burst is
// searched.
func (s *Searcher) SetQuery(query string) {
	s.debouncer.Trigger(func(ctx context.Context) {
		results := Search(s.board.Cache(), query, s.field)
		if ctx.Err() != nil {
			return
		}
		s.onResult(query, results)
	})
}

// Flush searches the pending query now instead of waiting for the delay.
func (s *Searcher) Flush() {
	s.debouncer.Flush()
}

// Close drops any pending query and waits for a running one.
func (s *Searcher) Close() {
	s.debouncer.Stop()
}

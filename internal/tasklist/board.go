package tasklist

import (
	"slices"
	"sync"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

// View is the derived state rendered for the current page.
type View struct {
	Items     []models.Task
	Page      int
	PageCount int
	Total     int
	Window    []int
	Options   Options
}

// Board owns the cached task list and the view options. It is safe for
// concurrent use.
type Board struct {
	mu    sync.RWMutex
	cache []models.Task
	opts  Options
	page  int
}

func NewBoard() *Board {
	return &Board{opts: DefaultOptions()}
}

// Replace swaps the whole cache and resets the page.
func (b *Board) Replace(tasks []models.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache = slices.Clone(tasks)
	b.page = 0
}

// Cache returns a copy of the raw cached tasks in server order.
func (b *Board) Cache() []models.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.cache)
}

func (b *Board) Options() Options {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.opts
}

func (b *Board) SetOptions(opts Options) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts = opts
	b.page = 0
}

func (b *Board) SetFilter(filter Filter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts.Filter = filter
	b.page = 0
}

func (b *Board) SetSort(field SortField) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts.Sort = field
	b.page = 0
}

func (b *Board) SetOrder(order SortOrder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts.Order = order
	b.page = 0
}

// SetPage moves to the given page, clamped to the existing pages.
func (b *Board) SetPage(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = b.clampLocked(page)
}

func (b *Board) Next() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = b.clampLocked(b.page + 1)
}

func (b *Board) Prev() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = b.clampLocked(b.page - 1)
}

func (b *Board) View() View {
	b.mu.RLock()
	defer b.mu.RUnlock()

	processed := Process(b.cache, b.opts)
	pages := PageCount(len(processed))
	return View{
		Items:     Page(processed, b.page),
		Page:      b.page,
		PageCount: pages,
		Total:     len(processed),
		Window:    PageWindow(b.page, pages),
		Options:   b.opts,
	}
}

func (b *Board) clampLocked(page int) int {
	pages := PageCount(len(Process(b.cache, b.opts)))
	return max(0, min(page, pages-1))
}

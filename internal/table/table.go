package table

import (
	"sort"
	"strings"
)

// SortDir is the active sort direction.
type SortDir int

const (
	Ascending SortDir = iota
	Descending
)

// Column describes one table column for rows of type T. Render is
// required; Compare is required only for sortable columns.
type Column[T any] struct {
	Key      string
	Label    string
	Sortable bool
	Compare  func(a, b T) int
	Render   func(row T) string
	Width    int
}

// Actions are the per-row operations the caller makes available. A nil
// callback hides the corresponding action; the table never assumes which
// operations exist. OnDelete is only ever invoked through ConfirmDelete,
// after the external confirmation step.
type Actions[T any] struct {
	OnView   func(T)
	OnEdit   func(T)
	OnDelete func(T)
}

// Table is a view over caller-supplied rows. The caller owns the data;
// the table owns only UI state: search query, sort column and direction,
// page and cursor. Rendering is a pure function of data and that state.
type Table[T any] struct {
	columns      []Column[T]
	keyFn        func(T) string
	searchFields []func(T) string
	actions      Actions[T]
	emptyMsg     string
	onSearch     func(string) // optional server-side search delegation

	data     []T
	loading  bool
	err      error
	pageSize int

	query   string
	sortCol int // index into columns, -1 = unsorted
	sortDir SortDir
	page    int
	cursor  int
}

// Option configures a Table.
type Option[T any] func(*Table[T])

// WithSearchFields supplies the extractors the search query matches
// against (case-insensitive substring, OR across fields).
func WithSearchFields[T any](fields ...func(T) string) Option[T] {
	return func(t *Table[T]) { t.searchFields = fields }
}

// WithActions supplies the row action callbacks.
func WithActions[T any](a Actions[T]) Option[T] {
	return func(t *Table[T]) { t.actions = a }
}

// WithEmptyMessage sets the message shown when no rows survive the filter.
func WithEmptyMessage[T any](msg string) Option[T] {
	return func(t *Table[T]) { t.emptyMsg = msg }
}

// WithPageSize sets rows per page (default 15).
func WithPageSize[T any](n int) Option[T] {
	return func(t *Table[T]) {
		if n > 0 {
			t.pageSize = n
		}
	}
}

// WithOnSearch registers a callback fired whenever the query changes, for
// callers that additionally delegate search to the server.
func WithOnSearch[T any](fn func(string)) Option[T] {
	return func(t *Table[T]) { t.onSearch = fn }
}

// New creates a table. keyFn extracts row identity and is never inferred.
func New[T any](columns []Column[T], keyFn func(T) string, opts ...Option[T]) *Table[T] {
	t := &Table[T]{
		columns:  columns,
		keyFn:    keyFn,
		emptyMsg: "No records.",
		pageSize: 15,
		sortCol:  -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetData replaces the dataset and clears loading/error state. UI state
// (query, sort, page) is kept; the cursor is clamped.
func (t *Table[T]) SetData(rows []T) {
	t.data = rows
	t.loading = false
	t.err = nil
	t.clamp()
}

// SetLoading switches the table into the skeleton state.
func (t *Table[T]) SetLoading(v bool) { t.loading = v }

// Loading reports whether the skeleton state is active.
func (t *Table[T]) Loading() bool { return t.loading }

// SetError puts the table into the error state.
func (t *Table[T]) SetError(err error) {
	t.err = err
	t.loading = false
}

// Err returns the current error state, if any.
func (t *Table[T]) Err() error { return t.err }

// Search sets the query, resets paging, and notifies the onSearch hook.
func (t *Table[T]) Search(query string) {
	t.query = query
	t.page = 0
	t.cursor = 0
	if t.onSearch != nil {
		t.onSearch(query)
	}
}

// Query returns the active search query.
func (t *Table[T]) Query() string { return t.query }

// SortBy activates sorting on the column with the given key. Repeating
// the active column toggles direction; a different column resets to
// ascending. Unknown or non-sortable keys are ignored.
func (t *Table[T]) SortBy(key string) {
	for i, col := range t.columns {
		if col.Key != key {
			continue
		}
		if !col.Sortable {
			return
		}
		if t.sortCol == i {
			if t.sortDir == Ascending {
				t.sortDir = Descending
			} else {
				t.sortDir = Ascending
			}
		} else {
			t.sortCol = i
			t.sortDir = Ascending
		}
		return
	}
}

// SortByIndex activates sorting on the i-th column, with the same
// toggle/reset behavior as SortBy.
func (t *Table[T]) SortByIndex(i int) {
	if i < 0 || i >= len(t.columns) {
		return
	}
	t.SortBy(t.columns[i].Key)
}

// SortState returns the active sort column key and direction, with ok
// false when unsorted.
func (t *Table[T]) SortState() (key string, dir SortDir, ok bool) {
	if t.sortCol < 0 {
		return "", Ascending, false
	}
	return t.columns[t.sortCol].Key, t.sortDir, true
}

// Rows returns the full filtered and sorted view of the data.
func (t *Table[T]) Rows() []T {
	rows := t.filtered()
	if t.sortCol >= 0 {
		cmp := t.columns[t.sortCol].Compare
		dir := t.sortDir
		sort.SliceStable(rows, func(i, j int) bool {
			c := cmp(rows[i], rows[j])
			if dir == Descending {
				return c > 0
			}
			return c < 0
		})
	}
	return rows
}

func (t *Table[T]) filtered() []T {
	rows := make([]T, 0, len(t.data))
	query := strings.ToLower(strings.TrimSpace(t.query))
	if query == "" || len(t.searchFields) == 0 {
		return append(rows, t.data...)
	}
	for _, row := range t.data {
		for _, field := range t.searchFields {
			if strings.Contains(strings.ToLower(field(row)), query) {
				rows = append(rows, row)
				break
			}
		}
	}
	return rows
}

// Page returns the rows of the current page.
func (t *Table[T]) Page() []T {
	rows := t.Rows()
	start := t.page * t.pageSize
	if start >= len(rows) {
		return nil
	}
	end := start + t.pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// PageInfo returns the current page index and total page count.
func (t *Table[T]) PageInfo() (page, pages int) {
	n := len(t.Rows())
	pages = (n + t.pageSize - 1) / t.pageSize
	if pages == 0 {
		pages = 1
	}
	return t.page, pages
}

// NextPage advances one page if there is one.
func (t *Table[T]) NextPage() {
	if _, pages := t.PageInfo(); t.page < pages-1 {
		t.page++
		t.cursor = 0
	}
}

// PrevPage goes back one page if there is one.
func (t *Table[T]) PrevPage() {
	if t.page > 0 {
		t.page--
		t.cursor = 0
	}
}

// CursorDown moves the selection down within the page.
func (t *Table[T]) CursorDown() {
	if t.cursor < len(t.Page())-1 {
		t.cursor++
	}
}

// CursorUp moves the selection up within the page.
func (t *Table[T]) CursorUp() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// Cursor returns the selected row index within the page.
func (t *Table[T]) Cursor() int { return t.cursor }

// Current returns the selected row, with ok false when the page is empty.
func (t *Table[T]) Current() (T, bool) {
	var zero T
	page := t.Page()
	if t.cursor >= len(page) {
		return zero, false
	}
	return page[t.cursor], true
}

func (t *Table[T]) clamp() {
	if _, pages := t.PageInfo(); t.page >= pages {
		t.page = pages - 1
	}
	if n := len(t.Page()); t.cursor >= n && n > 0 {
		t.cursor = n - 1
	} else if n == 0 {
		t.cursor = 0
	}
}

// CanView, CanEdit and CanDelete report which row actions the caller
// supplied.
func (t *Table[T]) CanView() bool   { return t.actions.OnView != nil }
func (t *Table[T]) CanEdit() bool   { return t.actions.OnEdit != nil }
func (t *Table[T]) CanDelete() bool { return t.actions.OnDelete != nil }

// View invokes the view action for the selected row.
func (t *Table[T]) View() {
	if row, ok := t.Current(); ok && t.actions.OnView != nil {
		t.actions.OnView(row)
	}
}

// Edit invokes the edit action for the selected row.
func (t *Table[T]) Edit() {
	if row, ok := t.Current(); ok && t.actions.OnEdit != nil {
		t.actions.OnEdit(row)
	}
}

// RequestDelete returns the selected row for the external confirmation
// step. The table performs no destructive action itself.
func (t *Table[T]) RequestDelete() (T, bool) {
	var zero T
	if !t.CanDelete() {
		return zero, false
	}
	return t.Current()
}

// ConfirmDelete fires OnDelete for a row the confirmation step approved.
func (t *Table[T]) ConfirmDelete(row T) {
	if t.actions.OnDelete != nil {
		t.actions.OnDelete(row)
	}
}

// Key returns a row's identity via the caller-supplied extractor.
func (t *Table[T]) Key(row T) string { return t.keyFn(row) }

package table

import (
	"errors"
	"strings"
	"testing"
)

type item struct {
	ID   string
	Name string
	Rank int
}

func nameCol() Column[item] {
	return Column[item]{
		Key:      "name",
		Label:    "Name",
		Sortable: true,
		Compare:  func(a, b item) int { return strings.Compare(a.Name, b.Name) },
		Render:   func(i item) string { return i.Name },
		Width:    12,
	}
}

func rankCol() Column[item] {
	return Column[item]{
		Key:      "rank",
		Label:    "Rank",
		Sortable: true,
		Compare:  func(a, b item) int { return a.Rank - b.Rank },
		Render:   func(i item) string { return i.Name },
		Width:    6,
	}
}

func newTestTable(opts ...Option[item]) *Table[item] {
	return New([]Column[item]{nameCol(), rankCol()}, func(i item) string { return i.ID }, opts...)
}

func names(rows []item) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortToggleAndReset(t *testing.T) {
	tbl := newTestTable()
	tbl.SetData([]item{
		{ID: "1", Name: "cherry", Rank: 3},
		{ID: "2", Name: "apple", Rank: 1},
		{ID: "3", Name: "banana", Rank: 2},
	})

	tbl.SortBy("name")
	if got := names(tbl.Rows()); !equal(got, []string{"apple", "banana", "cherry"}) {
		t.Errorf("ascending sort = %v", got)
	}

	// Same column again: direction flips.
	tbl.SortBy("name")
	if got := names(tbl.Rows()); !equal(got, []string{"cherry", "banana", "apple"}) {
		t.Errorf("descending sort = %v", got)
	}

	// Different column: back to ascending.
	tbl.SortBy("rank")
	key, dir, ok := tbl.SortState()
	if !ok || key != "rank" || dir != Ascending {
		t.Errorf("SortState = %q %v %v, want rank ascending", key, dir, ok)
	}
}

func TestSortIsStable(t *testing.T) {
	tbl := newTestTable()
	tbl.SetData([]item{
		{ID: "1", Name: "dup", Rank: 2},
		{ID: "2", Name: "dup", Rank: 1},
		{ID: "3", Name: "dup", Rank: 3},
	})

	tbl.SortBy("name")
	rows := tbl.Rows()
	if rows[0].ID != "1" || rows[1].ID != "2" || rows[2].ID != "3" {
		t.Errorf("equal keys must keep input order, got %v %v %v", rows[0].ID, rows[1].ID, rows[2].ID)
	}
}

func TestSortIgnoresNonSortableAndUnknown(t *testing.T) {
	cols := []Column[item]{nameCol(), {Key: "raw", Label: "Raw", Render: func(i item) string { return i.ID }}}
	tbl := New(cols, func(i item) string { return i.ID })
	tbl.SetData([]item{{ID: "2", Name: "b"}, {ID: "1", Name: "a"}})

	tbl.SortBy("raw")
	tbl.SortBy("missing")
	tbl.SortByIndex(99)

	if _, _, ok := tbl.SortState(); ok {
		t.Error("non-sortable keys must not activate sorting")
	}
}

func TestSearchCaseInsensitiveAcrossFields(t *testing.T) {
	tbl := newTestTable(WithSearchFields(
		func(i item) string { return i.Name },
		func(i item) string { return i.ID },
	))
	tbl.SetData([]item{
		{ID: "alpha-1", Name: "Server"},
		{ID: "beta-2", Name: "Client"},
		{ID: "gamma-3", Name: "serverless"},
	})

	tbl.Search("SERVER")
	if got := names(tbl.Rows()); !equal(got, []string{"Server", "serverless"}) {
		t.Errorf("query SERVER = %v", got)
	}

	// OR across fields: matches on ID too.
	tbl.Search("beta")
	if got := names(tbl.Rows()); !equal(got, []string{"Client"}) {
		t.Errorf("query beta = %v", got)
	}

	tbl.Search("")
	if n := len(tbl.Rows()); n != 3 {
		t.Errorf("cleared query rows = %d, want 3", n)
	}
}

func TestSearchResetsPaging(t *testing.T) {
	tbl := newTestTable(WithPageSize[item](2), WithSearchFields(func(i item) string { return i.Name }))
	tbl.SetData([]item{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}, {ID: "3", Name: "c"}})

	tbl.NextPage()
	if page, _ := tbl.PageInfo(); page != 1 {
		t.Fatalf("page = %d, want 1", page)
	}

	tbl.Search("a")
	if page, _ := tbl.PageInfo(); page != 0 {
		t.Errorf("search must reset to page 0, got %d", page)
	}
}

func TestPaginationAndCursor(t *testing.T) {
	tbl := newTestTable(WithPageSize[item](2))
	tbl.SetData([]item{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}, {ID: "5"}})

	if _, pages := tbl.PageInfo(); pages != 3 {
		t.Fatalf("pages = %d, want 3", pages)
	}

	tbl.CursorDown()
	tbl.CursorDown() // clamped at page end
	if tbl.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1", tbl.Cursor())
	}

	tbl.NextPage()
	tbl.NextPage()
	tbl.NextPage() // clamped at last page
	if page, _ := tbl.PageInfo(); page != 2 {
		t.Errorf("page = %d, want 2", page)
	}
	if got := len(tbl.Page()); got != 1 {
		t.Errorf("last page rows = %d, want 1", got)
	}

	row, ok := tbl.Current()
	if !ok || row.ID != "5" {
		t.Errorf("Current = %+v %v, want ID 5", row, ok)
	}

	tbl.PrevPage()
	tbl.PrevPage()
	tbl.PrevPage() // clamped at first page
	if page, _ := tbl.PageInfo(); page != 0 {
		t.Errorf("page = %d, want 0", page)
	}
}

func TestSetDataClampsCursor(t *testing.T) {
	tbl := newTestTable(WithPageSize[item](2))
	tbl.SetData([]item{{ID: "1"}, {ID: "2"}, {ID: "3"}})
	tbl.NextPage()

	tbl.SetData([]item{{ID: "1"}})

	if page, _ := tbl.PageInfo(); page != 0 {
		t.Errorf("page after shrink = %d, want 0", page)
	}
	if _, ok := tbl.Current(); !ok {
		t.Error("expected a selectable row after shrink")
	}
}

func TestNilCallbacksHideActions(t *testing.T) {
	tbl := newTestTable(WithActions(Actions[item]{
		OnEdit: func(item) {},
	}))
	tbl.SetData([]item{{ID: "1"}})

	if !tbl.CanEdit() {
		t.Error("edit action should be available")
	}
	if tbl.CanDelete() || tbl.CanView() {
		t.Error("nil callbacks must hide actions")
	}

	if _, ok := tbl.RequestDelete(); ok {
		t.Error("RequestDelete must refuse when delete is hidden")
	}

	// Invoking hidden actions is a no-op, not a panic.
	tbl.View()
	tbl.ConfirmDelete(item{ID: "1"})
}

func TestDeleteFlow(t *testing.T) {
	var deleted []string
	tbl := newTestTable(WithActions(Actions[item]{
		OnDelete: func(i item) { deleted = append(deleted, i.ID) },
	}))
	tbl.SetData([]item{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}})
	tbl.CursorDown()

	row, ok := tbl.RequestDelete()
	if !ok || row.ID != "2" {
		t.Fatalf("RequestDelete = %+v %v", row, ok)
	}
	if len(deleted) != 0 {
		t.Fatal("RequestDelete must not fire the delete callback")
	}

	tbl.ConfirmDelete(row)
	if len(deleted) != 1 || deleted[0] != "2" {
		t.Errorf("deleted = %v, want [2]", deleted)
	}
}

func TestRenderStates(t *testing.T) {
	tbl := newTestTable(WithEmptyMessage[item]("Nothing here."))

	tbl.SetLoading(true)
	if out := tbl.Render(); !strings.Contains(out, "░") {
		t.Error("loading render should show skeleton cells")
	}

	tbl.SetError(errors.New("boom"))
	if out := tbl.Render(); !strings.Contains(out, "boom") {
		t.Error("error render should include the error")
	}

	tbl.SetData(nil)
	if out := tbl.Render(); !strings.Contains(out, "Nothing here.") {
		t.Error("empty render should show the empty message")
	}

	tbl.SetData([]item{{ID: "1", Name: "row-one"}})
	out := tbl.Render()
	if !strings.Contains(out, "row-one") {
		t.Error("data render should include the rows")
	}
	if !strings.Contains(out, "1 records") {
		t.Error("footer should report the record count")
	}
}

func TestSetDataClearsErrorAndLoading(t *testing.T) {
	tbl := newTestTable()
	tbl.SetLoading(true)
	tbl.SetError(errors.New("boom"))

	tbl.SetData([]item{{ID: "1"}})

	if tbl.Loading() || tbl.Err() != nil {
		t.Error("SetData must clear loading and error state")
	}
}

func TestOnSearchHook(t *testing.T) {
	var got []string
	tbl := newTestTable(WithOnSearch[item](func(q string) { got = append(got, q) }))
	tbl.Search("abc")
	tbl.Search("")
	if !equal(got, []string{"abc", ""}) {
		t.Errorf("onSearch calls = %v", got)
	}
}

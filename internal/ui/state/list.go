package state

// List tracks the torrent pane's view state: cursor row, viewport offset,
// and the marked set for batch actions. The cursor follows a torrent id
// rather than a row index, so merges and re-sorts arriving mid-session
// never move the selection to a different torrent.
type List struct {
	Rows           []int64
	Cursor         int
	ViewportOffset int

	focus  int64
	marked map[int64]struct{}
}

// NewList returns an empty list; the cursor parks at -1 until rows arrive.
func NewList() *List {
	return &List{Cursor: -1, marked: make(map[int64]struct{})}
}

// SetRows replaces the visible rows, keeping the cursor on the torrent it
// was on when that torrent is still visible and holding the row position
// otherwise.
func (l *List) SetRows(rows []int64) {
	l.Rows = append([]int64(nil), rows...)
	if len(l.Rows) == 0 {
		l.Cursor = -1
		l.ViewportOffset = 0
		return
	}
	if idx := l.indexOf(l.focus); idx >= 0 {
		l.Cursor = idx
		return
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Cursor >= len(l.Rows) {
		l.Cursor = len(l.Rows) - 1
	}
	l.focus = l.Rows[l.Cursor]
}

func (l *List) indexOf(id int64) int {
	if id == 0 {
		return -1
	}
	for i, row := range l.Rows {
		if row == id {
			return i
		}
	}
	return -1
}

// Current reports the torrent id under the cursor.
func (l *List) Current() (int64, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Rows) {
		return 0, false
	}
	return l.Rows[l.Cursor], true
}

// MoveBy moves the cursor by delta rows, clamped to the list.
func (l *List) MoveBy(delta int) bool {
	if len(l.Rows) == 0 {
		return false
	}
	old := l.Cursor
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	l.Cursor += delta
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Cursor >= len(l.Rows) {
		l.Cursor = len(l.Rows) - 1
	}
	l.focus = l.Rows[l.Cursor]
	return l.Cursor != old
}

// MoveHome moves the cursor to the first row.
func (l *List) MoveHome() bool {
	if len(l.Rows) == 0 {
		return false
	}
	old := l.Cursor
	l.Cursor = 0
	l.focus = l.Rows[0]
	return old != 0
}

// MoveEnd moves the cursor to the last row.
func (l *List) MoveEnd() bool {
	if len(l.Rows) == 0 {
		return false
	}
	old := l.Cursor
	l.Cursor = len(l.Rows) - 1
	l.focus = l.Rows[l.Cursor]
	return old != l.Cursor
}

// PageUp moves the cursor up one viewport worth of rows.
func (l *List) PageUp(maxVisible int) bool {
	return l.MoveBy(-l.pageSize(maxVisible))
}

// PageDown moves the cursor down one viewport worth of rows.
func (l *List) PageDown(maxVisible int) bool {
	return l.MoveBy(l.pageSize(maxVisible))
}

func (l *List) pageSize(maxVisible int) int {
	total := len(l.Rows)
	if total == 0 {
		return 0
	}
	size := maxVisible
	if size <= 0 || size > total {
		size = total
	}
	if size < 1 {
		size = 1
	}
	return size
}

// EnsureVisible adjusts the viewport offset so the cursor stays on screen.
func (l *List) EnsureVisible(maxVisible int) {
	if len(l.Rows) == 0 {
		l.ViewportOffset = 0
		return
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Cursor >= len(l.Rows) {
		l.Cursor = len(l.Rows) - 1
	}
	if maxVisible <= 0 {
		l.ViewportOffset = 0
		return
	}
	maxOffset := len(l.Rows) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if l.ViewportOffset > maxOffset {
		l.ViewportOffset = maxOffset
	}
	if l.ViewportOffset < 0 {
		l.ViewportOffset = 0
	}
	if l.Cursor < l.ViewportOffset {
		l.ViewportOffset = l.Cursor
	}
	if upper := l.ViewportOffset + maxVisible - 1; l.Cursor > upper {
		l.ViewportOffset = l.Cursor - maxVisible + 1
		if l.ViewportOffset > maxOffset {
			l.ViewportOffset = maxOffset
		}
		if l.ViewportOffset < 0 {
			l.ViewportOffset = 0
		}
	}
}

// IsMarked reports whether the torrent is in the marked set.
func (l *List) IsMarked(id int64) bool {
	_, ok := l.marked[id]
	return ok
}

// ToggleMark flips membership of the row under the cursor.
func (l *List) ToggleMark() bool {
	id, ok := l.Current()
	if !ok {
		return false
	}
	if l.IsMarked(id) {
		delete(l.marked, id)
	} else {
		l.marked[id] = struct{}{}
	}
	return true
}

// MarkAll marks every visible row.
func (l *List) MarkAll() {
	for _, id := range l.Rows {
		l.marked[id] = struct{}{}
	}
}

// InvertMarks flips the mark on every visible row.
func (l *List) InvertMarks() {
	for _, id := range l.Rows {
		if l.IsMarked(id) {
			delete(l.marked, id)
		} else {
			l.marked[id] = struct{}{}
		}
	}
}

// ClearMarks empties the marked set and reports whether anything was
// marked.
func (l *List) ClearMarks() bool {
	if len(l.marked) == 0 {
		return false
	}
	l.marked = make(map[int64]struct{})
	return true
}

// DropMarks removes marks for torrents that no longer exist.
func (l *List) DropMarks(removed []int64) {
	for _, id := range removed {
		delete(l.marked, id)
	}
}

// MarkedCount reports how many torrents are marked, visible or not.
func (l *List) MarkedCount() int {
	return len(l.marked)
}

// Marked returns the marked ids in display order; marked torrents the
// current filter hides follow after.
func (l *List) Marked() []int64 {
	if len(l.marked) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(l.marked))
	seen := make(map[int64]struct{}, len(l.marked))
	for _, id := range l.Rows {
		if l.IsMarked(id) {
			ids = append(ids, id)
			seen[id] = struct{}{}
		}
	}
	for id := range l.marked {
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Targets reports the ids an action should apply to: the marked set when
// non-empty, otherwise the row under the cursor.
func (l *List) Targets() []int64 {
	if marked := l.Marked(); len(marked) > 0 {
		return marked
	}
	if id, ok := l.Current(); ok {
		return []int64{id}
	}
	return nil
}

// Tab is an index cursor for the detail pane's file, peer, and tracker
// tables, which key by position rather than id.
type Tab struct {
	Size           int
	Pos            int
	ViewportOffset int
}

// SetSize updates the row count, clamping the position.
func (t *Tab) SetSize(n int) {
	t.Size = n
	if t.Size <= 0 {
		t.Pos = 0
		t.ViewportOffset = 0
		return
	}
	if t.Pos >= t.Size {
		t.Pos = t.Size - 1
	}
	if t.Pos < 0 {
		t.Pos = 0
	}
}

// Move shifts the position by delta rows, clamped.
func (t *Tab) Move(delta int) bool {
	if t.Size == 0 {
		return false
	}
	old := t.Pos
	t.Pos += delta
	if t.Pos < 0 {
		t.Pos = 0
	}
	if t.Pos >= t.Size {
		t.Pos = t.Size - 1
	}
	return t.Pos != old
}

// EnsureVisible adjusts the viewport offset so the position stays on
// screen.
func (t *Tab) EnsureVisible(maxVisible int) {
	if t.Size == 0 || maxVisible <= 0 {
		t.ViewportOffset = 0
		return
	}
	maxOffset := t.Size - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if t.ViewportOffset > maxOffset {
		t.ViewportOffset = maxOffset
	}
	if t.ViewportOffset < 0 {
		t.ViewportOffset = 0
	}
	if t.Pos < t.ViewportOffset {
		t.ViewportOffset = t.Pos
	}
	if upper := t.ViewportOffset + maxVisible - 1; t.Pos > upper {
		t.ViewportOffset = t.Pos - maxVisible + 1
		if t.ViewportOffset > maxOffset {
			t.ViewportOffset = maxOffset
		}
		if t.ViewportOffset < 0 {
			t.ViewportOffset = 0
		}
	}
}

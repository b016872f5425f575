package analytics

// ============================================================================
// VIEW — Indexed cell access over tabular data
// ============================================================================
// The counting engine never owns the data. It reads string cells through
// this interface; dataset.Table adapts itself, tests use RowsView.
// Null cells read as the empty string.
//
// Implementations:
//   RowsView — wraps []Row for fixtures and ad-hoc data
//   subView  — filtered subset (indices into parent, no data copy)
// ============================================================================

// View provides indexed access to string cells.
// Cell is called in tight loops — keep implementations fast.
type View interface {
	Len() int
	Cell(row int, column string) string
}

// Row is one data row keyed by column name.
type Row map[string]string

// RowsView wraps a []Row slice as a View.
type RowsView struct {
	rows []Row
}

// NewRowsView creates a View from a []Row slice.
func NewRowsView(rows []Row) View {
	return &RowsView{rows: rows}
}

func (v *RowsView) Len() int {
	return len(v.rows)
}

func (v *RowsView) Cell(i int, column string) string {
	if i < 0 || i >= len(v.rows) {
		return ""
	}
	return v.rows[i][column]
}

// subView is a filtered subset of a parent View.
// Holds indices into the parent, no data copy.
type subView struct {
	parent  View
	indices []int
}

// NewSubView creates a View restricted to the given parent row indices.
func NewSubView(parent View, indices []int) View {
	return &subView{parent: parent, indices: indices}
}

func (v *subView) Len() int {
	return len(v.indices)
}

func (v *subView) Cell(i int, column string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Cell(v.indices[i], column)
}

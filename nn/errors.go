package nn

import "fmt"

// ArchError reports a structurally unsound layer sequence. Index is the
// position of the offending layer, or -1 when the sequence as a whole (or
// a layer under construction) is at fault.
type ArchError struct {
	Index  int
	Reason string
}

func (e *ArchError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid architecture: %s", e.Reason)
	}
	return fmt.Sprintf("invalid architecture: layer %d: %s", e.Index, e.Reason)
}

// ShapeError reports a dimension mismatch during evaluation or training.
type ShapeError struct {
	What string
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: expected %d values, got %d", e.What, e.Want, e.Got)
}

// AllocError reports a weight allocation with non-positive dimensions.
type AllocError struct {
	Junction int
	Rows     int
	Cols     int
}

func (e *AllocError) Error() string {
	return fmt.Sprintf("junction %d: cannot allocate %dx%d weight matrix", e.Junction, e.Rows, e.Cols)
}

package rung

import liberrors "github.com/ladderworks/ladderkit/pkg/errors"

// Routine is an ordered list of rungs. The routine owns its rungs
// exclusively; vertical stacking of rungs on screen is derived by the layout
// engine and never stored here.
type Routine struct {
	Name  string
	rungs []*Rung
}

// NewRoutine returns an empty routine with the given name.
func NewRoutine(name string) *Routine {
	return &Routine{Name: name}
}

// ParseRoutine builds a routine from one rung-text line per rung.
func ParseRoutine(name string, rungTexts ...string) (*Routine, error) {
	rt := NewRoutine(name)
	for i, text := range rungTexts {
		r, err := ParseText(text)
		if err != nil {
			return nil, liberrors.Wrap(liberrors.ErrCodeInvalidRoutine, err, "rung %d", i)
		}
		rt.rungs = append(rt.rungs, r)
	}
	return rt, nil
}

// Len returns the number of rungs.
func (rt *Routine) Len() int { return len(rt.rungs) }

// Rung returns the rung at the given index.
func (rt *Routine) Rung(i int) (*Rung, error) {
	if i < 0 || i >= len(rt.rungs) {
		return nil, liberrors.New(liberrors.ErrCodePositionOutOfRange,
			"rung %d outside routine of %d rungs", i, len(rt.rungs))
	}
	return rt.rungs[i], nil
}

// Rungs returns the rung list in execution order. The slice is a copy; the
// rungs themselves are shared.
func (rt *Routine) Rungs() []*Rung {
	out := make([]*Rung, len(rt.rungs))
	copy(out, rt.rungs)
	return out
}

// AddRung appends a rung and returns its index.
func (rt *Routine) AddRung(r *Rung) int {
	rt.rungs = append(rt.rungs, r)
	return len(rt.rungs) - 1
}

// InsertRung inserts a rung at index i, shifting later rungs down.
func (rt *Routine) InsertRung(i int, r *Rung) error {
	if i < 0 || i > len(rt.rungs) {
		return liberrors.New(liberrors.ErrCodePositionOutOfRange,
			"rung index %d outside 0..%d", i, len(rt.rungs))
	}
	rt.rungs = append(rt.rungs[:i], append([]*Rung{r}, rt.rungs[i:]...)...)
	return nil
}

// RemoveRung removes the rung at index i.
func (rt *Routine) RemoveRung(i int) error {
	if i < 0 || i >= len(rt.rungs) {
		return liberrors.New(liberrors.ErrCodePositionOutOfRange,
			"rung %d outside routine of %d rungs", i, len(rt.rungs))
	}
	rt.rungs = append(rt.rungs[:i], rt.rungs[i+1:]...)
	return nil
}

// Validate checks every rung's structural invariants.
func (rt *Routine) Validate() error {
	for i, r := range rt.rungs {
		if err := r.Validate(); err != nil {
			return liberrors.Wrap(liberrors.ErrCodeInvalidRoutine, err, "rung %d", i)
		}
	}
	return nil
}

package planner

// HistorySize is the number of accepted paths a History retains
const HistorySize = 3

// History remembers the most recently accepted paths, oldest first.
// The zero value is ready to use.
type History struct {
	paths []Path
}

// Record checks p against the retained paths. When an identical coordinate
// sequence is already retained the caller is thrashing between routes: p is
// discarded and a copy of the most recently retained path is returned with true.
// Otherwise a copy of p is retained (evicting the oldest beyond HistorySize) and
// p is returned unchanged with false.
//
// Empty paths are neither retained nor matched.
func (h *History) Record(p Path) (Path, bool) {
	if p.Empty() {
		return p, false
	}

	for _, past := range h.paths {
		if past.Equal(p) {
			return h.paths[len(h.paths)-1].Clone(), true
		}
	}

	h.paths = append(h.paths, p.Clone())
	if len(h.paths) > HistorySize {
		h.paths = append([]Path(nil), h.paths[len(h.paths)-HistorySize:]...)
	}
	return p, false
}

// Len returns the number of retained paths
func (h *History) Len() int {
	return len(h.paths)
}

// Paths returns copies of the retained paths, oldest first
func (h *History) Paths() []Path {
	out := make([]Path, len(h.paths))
	for i, p := range h.paths {
		out[i] = p.Clone()
	}
	return out
}

// Reset forgets every retained path
func (h *History) Reset() {
	h.paths = nil
}

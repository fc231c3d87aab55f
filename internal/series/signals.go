package series

// Signals is a boolean time series aligned with a PriceSeries.
type Signals []bool

// NewSignals returns an all-false series of length n.
func NewSignals(n int) Signals { return make(Signals, n) }

// Clone returns an independent copy.
func (s Signals) Clone() Signals {
	out := make(Signals, len(s))
	copy(out, s)
	return out
}

// Count returns the number of true values.
func (s Signals) Count() int {
	n := 0
	for _, v := range s {
		if v {
			n++
		}
	}
	return n
}

// Any reports whether at least one value is true.
func (s Signals) Any() bool { return s.First() >= 0 }

// First returns the index of the earliest true value, or -1.
func (s Signals) First() int {
	for i, v := range s {
		if v {
			return i
		}
	}
	return -1
}

// LastIndex returns the index of the latest true value, or -1.
func (s Signals) LastIndex() int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] {
			return i
		}
	}
	return -1
}

// Indices returns the positions of all true values in ascending order.
func (s Signals) Indices() []int {
	out := make([]int, 0, s.Count())
	for i, v := range s {
		if v {
			out = append(out, i)
		}
	}
	return out
}

// Clear sets every value to false.
func (s Signals) Clear() {
	for i := range s {
		s[i] = false
	}
}

// Or merges other into s in place. Both must have the same length.
func (s Signals) Or(other Signals) {
	for i := range s {
		s[i] = s[i] || other[i]
	}
}

// Equal reports element-wise equality.
func (s Signals) Equal(other Signals) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

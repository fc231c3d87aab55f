package optimizer

import "github.com/your-org/rule-search/internal/chromosome"

// Entry is a chromosome together with its fitness.
type Entry struct {
	Chromosome chromosome.Chromosome
	Fitness    float64
}

// HallOfFame keeps the best distinct chromosomes seen during a search, sorted
// by descending fitness. Among equal fitness the earlier entry ranks first.
// It is not safe for concurrent use.
type HallOfFame struct {
	max     int
	entries []Entry
}

// NewHallOfFame creates a hall of fame holding at most size entries.
func NewHallOfFame(size int) *HallOfFame {
	if size < 1 {
		size = 1
	}
	return &HallOfFame{max: size, entries: make([]Entry, 0, size)}
}

// Update offers every individual to the hall of fame. Chromosomes are copied.
func (h *HallOfFame) Update(individuals []Entry) {
	for _, ind := range individuals {
		h.offer(ind)
	}
}

func (h *HallOfFame) offer(ind Entry) {
	if len(h.entries) == h.max && ind.Fitness <= h.entries[len(h.entries)-1].Fitness {
		return
	}
	for _, e := range h.entries {
		if e.Chromosome.Equal(ind.Chromosome) {
			return
		}
	}

	pos := len(h.entries)
	for i, e := range h.entries {
		if ind.Fitness > e.Fitness {
			pos = i
			break
		}
	}
	if len(h.entries) == h.max {
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, Entry{})
	copy(h.entries[pos+1:], h.entries[pos:])
	h.entries[pos] = Entry{Chromosome: ind.Chromosome.Clone(), Fitness: ind.Fitness}
}

// Len returns the number of entries.
func (h *HallOfFame) Len() int { return len(h.entries) }

// Best returns the top entry.
func (h *HallOfFame) Best() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[0], true
}

// Entries returns a copy of the entries, best first.
func (h *HallOfFame) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	for i, e := range h.entries {
		out[i] = Entry{Chromosome: e.Chromosome.Clone(), Fitness: e.Fitness}
	}
	return out
}

// Chromosomes returns copies of the stored chromosomes, best first.
func (h *HallOfFame) Chromosomes() []chromosome.Chromosome {
	out := make([]chromosome.Chromosome, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Chromosome.Clone()
	}
	return out
}

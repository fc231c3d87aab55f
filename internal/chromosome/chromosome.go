// Package chromosome encodes rule parameters and on/off flags as bit vectors.
//
// Every rule occupies its parameter fields, each an unsigned big-endian
// integer of its declared width, followed by a single control bit that is 1
// when the rule is active.
package chromosome

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// MaxBitWidth is the widest parameter field supported.
const MaxBitWidth = 31

var (
	ErrLengthMismatch  = errors.New("chromosome length does not match rule specs")
	ErrInvalidBitWidth = errors.New("bit width must be between 1 and 31")
	ErrParamOutOfRange = errors.New("parameter does not fit its bit width")
)

// RuleSpec lists the bit widths of a rule's parameters.
type RuleSpec struct {
	BitWidths []int
}

// Bits returns the number of bits the rule occupies, control bit included.
func (s RuleSpec) Bits() int {
	n := 1
	for _, w := range s.BitWidths {
		n += w
	}
	return n
}

func (s RuleSpec) validate() error {
	for _, w := range s.BitWidths {
		if w < 1 || w > MaxBitWidth {
			return fmt.Errorf("%w: got %d", ErrInvalidBitWidth, w)
		}
	}
	return nil
}

// Gene is the decoded part of a chromosome belonging to one rule.
type Gene struct {
	Params []int
	Active bool
}

// Chromosome is a fixed-length vector of 0/1 values.
type Chromosome []uint8

// Clone returns an independent copy.
func (c Chromosome) Clone() Chromosome {
	out := make(Chromosome, len(c))
	copy(out, c)
	return out
}

// Equal reports whether both chromosomes carry the same bits.
func (c Chromosome) Equal(other Chromosome) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the chromosome as a bit string such as "0110".
func (c Chromosome) String() string {
	var b strings.Builder
	b.Grow(len(c))
	for _, bit := range c {
		if bit != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Parse reads a bit string produced by String.
func Parse(s string) (Chromosome, error) {
	c := make(Chromosome, len(s))
	for i, r := range s {
		switch r {
		case '0':
		case '1':
			c[i] = 1
		default:
			return nil, fmt.Errorf("invalid bit %q at position %d", r, i)
		}
	}
	return c, nil
}

// Length returns the number of bits needed for specs.
func Length(specs []RuleSpec) int {
	n := 0
	for _, s := range specs {
		n += s.Bits()
	}
	return n
}

// Decode splits ch into one Gene per RuleSpec, in order. Bits beyond the
// required length are ignored.
func Decode(ch Chromosome, specs []RuleSpec) ([]Gene, error) {
	for _, s := range specs {
		if err := s.validate(); err != nil {
			return nil, err
		}
	}
	if need := Length(specs); len(ch) < need {
		return nil, fmt.Errorf("%w: have %d bits, need %d", ErrLengthMismatch, len(ch), need)
	}

	genes := make([]Gene, len(specs))
	pos := 0
	for i, s := range specs {
		params := make([]int, len(s.BitWidths))
		for j, w := range s.BitWidths {
			v := 0
			for _, bit := range ch[pos : pos+w] {
				v = v<<1 | int(bit&1)
			}
			params[j] = v
			pos += w
		}
		genes[i] = Gene{Params: params, Active: ch[pos] != 0}
		pos++
	}
	return genes, nil
}

// Encode is the inverse of Decode.
func Encode(genes []Gene, specs []RuleSpec) (Chromosome, error) {
	if len(genes) != len(specs) {
		return nil, fmt.Errorf("%w: %d genes for %d rules", ErrLengthMismatch, len(genes), len(specs))
	}

	ch := make(Chromosome, 0, Length(specs))
	for i, s := range specs {
		if err := s.validate(); err != nil {
			return nil, err
		}
		g := genes[i]
		if len(g.Params) != len(s.BitWidths) {
			return nil, fmt.Errorf("%w: rule %d has %d params, want %d", ErrLengthMismatch, i, len(g.Params), len(s.BitWidths))
		}
		for j, w := range s.BitWidths {
			v := g.Params[j]
			if v < 0 || v >= 1<<w {
				return nil, fmt.Errorf("%w: rule %d param %d = %d with %d bits", ErrParamOutOfRange, i, j, v, w)
			}
			for b := w - 1; b >= 0; b-- {
				ch = append(ch, uint8(v>>b&1))
			}
		}
		if g.Active {
			ch = append(ch, 1)
		} else {
			ch = append(ch, 0)
		}
	}
	return ch, nil
}

// Random draws a chromosome of the given length from rng.
func Random(rng *rand.Rand, length int) Chromosome {
	ch := make(Chromosome, length)
	for i := range ch {
		ch[i] = uint8(rng.Intn(2))
	}
	return ch
}

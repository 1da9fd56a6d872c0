package shape

import (
	"fmt"
	"strconv"
	"strings"
)

// Shape is the ordered list of dimension sizes of an operand, outermost axis
// first. The zero-length shape denotes a 0-dimensional scalar.
//
// Shapes are values: functions in this package never modify a Shape they
// receive and never return a slice that aliases one.
type Shape []int

// Of builds a Shape from its dimensions.
func Of(dims ...int) Shape {
	return Shape(dims).Clone()
}

// Rank returns the number of axes.
func (s Shape) Rank() int {
	return len(s)
}

// IsScalar reports whether s denotes a scalar: the empty shape, or a shape
// whose every dimension equals 1.
func (s Shape) IsScalar() bool {
	for _, d := range s {
		if d != 1 {
			return false
		}
	}
	return true
}

// IsScalar reports whether s denotes a scalar quantity.
func IsScalar(s Shape) bool {
	return s.IsScalar()
}

// Equal reports structural equality: same length, pairwise-equal dimensions.
func (s Shape) Equal(other Shape) bool {
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

// Clone returns an independent copy. A nil shape clones to an empty,
// non-nil shape so results always compare and encode the same way.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Validate checks that every dimension is non-negative.
func (s Shape) Validate() error {
	for i, d := range s {
		if d < 0 {
			return fmt.Errorf("axis %d has size %d: %w", i, d, ErrNegativeDimension)
		}
	}
	return nil
}

// String renders s in tuple form: "()", "(4,)", "(3, 4)".
// Error messages embed this form verbatim.
func (s Shape) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, d := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Itoa(d))
	}
	if len(s) == 1 {
		b.WriteByte(',')
	}
	b.WriteByte(')')
	return b.String()
}

// Parse reads a shape from text. Accepted forms:
//
//	""  "()"  "(4,)"  "(3, 4)"  "[3, 4]"  "3,4"  "3x4"
//
// Whitespace is ignored. Dimensions must be non-negative integers.
func Parse(text string) (Shape, error) {
	t := strings.TrimSpace(text)
	if len(t) >= 2 {
		if (t[0] == '(' && t[len(t)-1] == ')') || (t[0] == '[' && t[len(t)-1] == ']') {
			t = strings.TrimSpace(t[1 : len(t)-1])
		}
	}
	if t == "" {
		return Shape{}, nil
	}

	sep := ","
	if !strings.Contains(t, ",") && strings.ContainsAny(t, "xX") {
		t = strings.ReplaceAll(t, "X", "x")
		sep = "x"
	}

	parts := strings.Split(t, sep)
	// A single trailing separator is the 1-tuple form "(4,)".
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	out := make(Shape, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		d, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse shape %q: dimension %q: %w", text, p, ErrMalformedShape)
		}
		if d < 0 {
			return nil, fmt.Errorf("parse shape %q: %w", text, ErrNegativeDimension)
		}
		out = append(out, d)
	}
	return out, nil
}

// MustParse is like Parse but panics on error.
// Use only in tests or with constant input.
func MustParse(text string) Shape {
	s, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return s
}

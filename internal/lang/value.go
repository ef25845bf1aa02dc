package lang

import (
	"fmt"
	"math"
	"slices"
)

// MaxElements bounds the size of any array built during evaluation.
const MaxElements = 1 << 24

// Kind distinguishes numeric arrays from character arrays.
type Kind uint8

const (
	NumKind Kind = iota
	CharKind
)

func (k Kind) String() string {
	if k == CharKind {
		return "character"
	}
	return "number"
}

// Value is an immutable n-dimensional array stored in row-major order.
// Character arrays keep their code points in data.
type Value struct {
	kind  Kind
	shape []int
	data  []float64
}

// Scalar returns a rank 0 number.
func Scalar(x float64) Value {
	return Value{kind: NumKind, data: []float64{x}}
}

// Nums returns a numeric array. It panics if len(data) does not match shape.
func Nums(shape []int, data []float64) Value {
	if product(shape) != len(data) {
		panic(fmt.Sprintf("lang: shape %v does not hold %d elements", shape, len(data)))
	}
	return Value{kind: NumKind, shape: slices.Clone(shape), data: data}
}

// Vector returns a rank 1 numeric array.
func Vector(data ...float64) Value {
	return Value{kind: NumKind, shape: []int{len(data)}, data: data}
}

// Chars returns a rank 1 character array.
func Chars(s string) Value {
	runes := []rune(s)
	data := make([]float64, len(runes))
	for i, r := range runes {
		data[i] = float64(r)
	}
	return Value{kind: CharKind, shape: []int{len(data)}, data: data}
}

// Char returns a rank 0 character.
func Char(r rune) Value {
	return Value{kind: CharKind, data: []float64{float64(r)}}
}

// Kind reports whether v holds numbers or characters.
func (v Value) Kind() Kind { return v.kind }

// Shape returns a copy of the array shape. Scalars have an empty shape.
func (v Value) Shape() []int { return slices.Clone(v.shape) }

// Rank returns the number of dimensions.
func (v Value) Rank() int { return len(v.shape) }

// Len returns the number of rows. A scalar has one row.
func (v Value) Len() int {
	if len(v.shape) == 0 {
		return 1
	}
	return v.shape[0]
}

// Data returns the flat element data. Callers must not modify it.
func (v Value) Data() []float64 { return v.data }

// Text returns the characters of a character array as a string.
func (v Value) Text() string {
	runes := make([]rune, len(v.data))
	for i, x := range v.data {
		runes[i] = rune(x)
	}
	return string(runes)
}

// Equal reports whether two values have the same kind, shape and data.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind || !slices.Equal(v.shape, o.shape) {
		return false
	}
	for i := range v.data {
		if v.data[i] != o.data[i] && !(math.IsNaN(v.data[i]) && math.IsNaN(o.data[i])) {
			return false
		}
	}
	return true
}

func (v Value) rowSize() int {
	if len(v.shape) == 0 {
		return 1
	}
	return product(v.shape[1:])
}

// row returns the i-th row. A scalar is its own only row.
func (v Value) row(i int) Value {
	if len(v.shape) == 0 {
		return v
	}
	size := v.rowSize()
	return Value{kind: v.kind, shape: v.shape[1:], data: v.data[i*size : (i+1)*size]}
}

func (v Value) rows() []Value {
	n := v.Len()
	out := make([]Value, n)
	for i := range n {
		out[i] = v.row(i)
	}
	return out
}

func (v Value) isInt() bool {
	return v.Rank() == 0 && v.kind == NumKind && v.data[0] == float64(int(v.data[0]))
}

// fromRows stacks rows of equal shape and kind into a new array.
func fromRows(rows []Value) (Value, error) {
	if len(rows) == 0 {
		return Value{kind: NumKind, shape: []int{0}}, nil
	}
	first := rows[0]
	shape := append([]int{len(rows)}, first.shape...)
	if product(shape) > MaxElements {
		return Value{}, errTooLarge(shape)
	}
	data := make([]float64, 0, product(shape))
	for _, r := range rows {
		if !slices.Equal(r.shape, first.shape) {
			return Value{}, fmt.Errorf("cannot combine arrays of shapes %s and %s", shapeString(first.shape), shapeString(r.shape))
		}
		if r.kind != first.kind {
			return Value{}, fmt.Errorf("cannot combine %s and %s arrays", first.kind, r.kind)
		}
		data = append(data, r.data...)
	}
	return Value{kind: first.kind, shape: shape, data: data}, nil
}

func errTooLarge(shape []int) error {
	return fmt.Errorf("array of shape %s is too large", shapeString(shape))
}

func product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func shapeString(shape []int) string {
	s := "["
	for i, d := range shape {
		if i > 0 {
			s += " × "
		}
		s += fmt.Sprint(d)
	}
	return s + "]"
}

package lang

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"unicode"
)

func dup(i *Interp) error {
	v, err := i.pop("duplicate")
	if err != nil {
		return err
	}
	i.push(v)
	i.push(v)
	return nil
}

func over(i *Interp) error {
	a, b, err := i.pop2("over")
	if err != nil {
		return err
	}
	i.push(b)
	i.push(a)
	i.push(b)
	return nil
}

func flip(i *Interp) error {
	a, b, err := i.pop2("flip")
	if err != nil {
		return err
	}
	i.push(a)
	i.push(b)
	return nil
}

func pop(i *Interp) error {
	_, err := i.pop("pop")
	return err
}

func identity(i *Interp) error {
	v, err := i.pop("identity")
	if err != nil {
		return err
	}
	i.push(v)
	return nil
}

func constant(x float64) func(*Interp) error {
	return func(i *Interp) error {
		i.push(Scalar(x))
		return nil
	}
}

// unary maps one element. ok is false when the element kind is unsupported.
type unary func(x float64, kind Kind) (y float64, out Kind, ok bool)

func monadic(name string, f unary) func(*Interp) error {
	return func(i *Interp) error {
		v, err := i.pop(name)
		if err != nil {
			return err
		}
		data := make([]float64, len(v.data))
		kind := v.kind
		for n, x := range v.data {
			y, k, ok := f(x, v.kind)
			if !ok {
				return fmt.Errorf("cannot %s %s", name, v.kind)
			}
			data[n], kind = y, k
		}
		i.push(Value{kind: kind, shape: slices.Clone(v.shape), data: data})
		return nil
	}
}

func numOnly(f func(float64) float64) unary {
	return func(x float64, kind Kind) (float64, Kind, bool) {
		if kind != NumKind {
			return 0, kind, false
		}
		return f(x), NumKind, true
	}
}

var (
	opNot   = numOnly(func(x float64) float64 { return 1 - x })
	opSqrt  = numOnly(math.Sqrt)
	opSine  = numOnly(math.Sin)
	opFloor = numOnly(math.Floor)
	opCeil  = numOnly(math.Ceil)
	opRound = numOnly(math.Round)
	opSign  = numOnly(func(x float64) float64 {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		}
		return x
	})
)

// opNegate negates numbers and toggles the case of characters.
func opNegate(x float64, kind Kind) (float64, Kind, bool) {
	if kind == NumKind {
		return -x, NumKind, true
	}
	r := rune(x)
	if unicode.IsUpper(r) {
		return float64(unicode.ToLower(r)), CharKind, true
	}
	return float64(unicode.ToUpper(r)), CharKind, true
}

// opAbs takes the magnitude of numbers and uppercases characters.
func opAbs(x float64, kind Kind) (float64, Kind, bool) {
	if kind == NumKind {
		return math.Abs(x), NumKind, true
	}
	return float64(unicode.ToUpper(rune(x))), CharKind, true
}

// binary combines two elements; a is the value that was on top of the stack.
type binary func(a, b float64, ak, bk Kind) (float64, Kind, error)

var errKinds = errors.New("unsupported argument kinds")

func dyadic(name string, f binary) func(*Interp) error {
	return func(i *Interp) error {
		a, b, err := i.pop2(name)
		if err != nil {
			return err
		}
		v, err := pervade(a, b, f)
		if errors.Is(err, errKinds) {
			return fmt.Errorf("cannot %s %s and %s", name, a.kind, b.kind)
		}
		if err != nil {
			return err
		}
		i.push(v)
		return nil
	}
}

// pervade applies f element-wise. Shapes must be equal or one must be a
// prefix of the other, in which case the smaller value is repeated.
func pervade(a, b Value, f binary) (Value, error) {
	var (
		shape []int
		fill  int
	)
	switch {
	case slices.Equal(a.shape, b.shape):
		shape, fill = a.shape, 1
	case isPrefix(a.shape, b.shape):
		shape, fill = b.shape, product(b.shape[len(a.shape):])
	case isPrefix(b.shape, a.shape):
		shape, fill = a.shape, product(a.shape[len(b.shape):])
	default:
		return Value{}, fmt.Errorf("shapes %s and %s are not compatible", shapeString(a.shape), shapeString(b.shape))
	}

	n := product(shape)
	data := make([]float64, n)
	kind := NumKind
	for k := range n {
		ai, bi := k, k
		if len(a.shape) < len(shape) {
			ai = k / fill
		}
		if len(b.shape) < len(shape) {
			bi = k / fill
		}
		y, out, err := f(a.data[ai], b.data[bi], a.kind, b.kind)
		if err != nil {
			return Value{}, err
		}
		data[k], kind = y, out
	}
	if n == 0 {
		// Empty results keep the kind the elements would have had.
		if _, out, err := f(0, 0, a.kind, b.kind); err == nil {
			kind = out
		}
	}
	return Value{kind: kind, shape: slices.Clone(shape), data: data}, nil
}

func isPrefix(prefix, shape []int) bool {
	return len(prefix) < len(shape) && slices.Equal(prefix, shape[:len(prefix)])
}

func numeric(f func(a, b float64) float64) binary {
	return func(a, b float64, ak, bk Kind) (float64, Kind, error) {
		if ak != NumKind || bk != NumKind {
			return 0, NumKind, errKinds
		}
		return f(a, b), NumKind, nil
	}
}

// ordered works on two values of the same kind.
func ordered(f func(a, b float64) float64) binary {
	return func(a, b float64, ak, bk Kind) (float64, Kind, error) {
		if ak != bk {
			return 0, NumKind, errKinds
		}
		return f(a, b), ak, nil
	}
}

func comparison(f func(a, b float64) bool) binary {
	return func(a, b float64, ak, bk Kind) (float64, Kind, error) {
		if ak != bk {
			return 0, NumKind, errKinds
		}
		return boolNum(f(a, b)), NumKind, nil
	}
}

// equality compares any two elements. Different kinds are never equal.
func equality(want bool) binary {
	return func(a, b float64, ak, bk Kind) (float64, Kind, error) {
		eq := ak == bk && a == b
		return boolNum(eq == want), NumKind, nil
	}
}

func opAdd(a, b float64, ak, bk Kind) (float64, Kind, error) {
	switch {
	case ak == NumKind && bk == NumKind:
		return b + a, NumKind, nil
	case ak == CharKind && bk == CharKind:
		return 0, NumKind, errKinds
	}
	return b + a, CharKind, nil
}

// opSub subtracts a from b. A character minus a character is a number.
func opSub(a, b float64, ak, bk Kind) (float64, Kind, error) {
	switch {
	case ak == NumKind && bk == NumKind:
		return b - a, NumKind, nil
	case ak == CharKind && bk == CharKind:
		return b - a, NumKind, nil
	case bk == CharKind:
		return b - a, CharKind, nil
	}
	return 0, NumKind, errKinds
}

// modulus returns b modulo a with the sign of a.
func modulus(a, b float64) float64 {
	m := math.Mod(b, a)
	if m != 0 && (m < 0) != (a < 0) {
		m += a
	}
	return m
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

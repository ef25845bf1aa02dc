package lang

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

func length(i *Interp) error {
	v, err := i.pop("length")
	if err != nil {
		return err
	}
	i.push(Scalar(float64(v.Len())))
	return nil
}

func shapeOf(i *Interp) error {
	v, err := i.pop("shape")
	if err != nil {
		return err
	}
	data := make([]float64, len(v.shape))
	for n, d := range v.shape {
		data[n] = float64(d)
	}
	i.push(Vector(data...))
	return nil
}

func rangeOf(i *Interp) error {
	v, err := i.pop("range")
	if err != nil {
		return err
	}
	n, err := natural(v, "range")
	if err != nil {
		return err
	}
	if n > MaxElements {
		return errTooLarge([]int{n})
	}
	data := make([]float64, n)
	for k := range data {
		data[k] = float64(k)
	}
	i.push(Vector(data...))
	return nil
}

func first(i *Interp) error {
	v, err := i.pop("first")
	if err != nil {
		return err
	}
	if v.Rank() > 0 && v.Len() == 0 {
		return errors.New("cannot take first of an empty array")
	}
	i.push(v.row(0))
	return nil
}

func reverse(i *Interp) error {
	v, err := i.pop("reverse")
	if err != nil {
		return err
	}
	if v.Rank() == 0 {
		i.push(v)
		return nil
	}
	rows := v.rows()
	slices.Reverse(rows)
	i.push(rebuild(v, rows))
	return nil
}

func deshape(i *Interp) error {
	v, err := i.pop("deshape")
	if err != nil {
		return err
	}
	i.push(Value{kind: v.kind, shape: []int{len(v.data)}, data: v.data})
	return nil
}

// transpose moves the first axis to the end.
func transpose(i *Interp) error {
	v, err := i.pop("transpose")
	if err != nil {
		return err
	}
	if v.Rank() < 2 {
		i.push(v)
		return nil
	}
	rows, size := v.shape[0], v.rowSize()
	data := make([]float64, len(v.data))
	for r := range rows {
		for c := range size {
			data[c*rows+r] = v.data[r*size+c]
		}
	}
	shape := append(slices.Clone(v.shape[1:]), rows)
	i.push(Value{kind: v.kind, shape: shape, data: data})
	return nil
}

func grade(descending bool) func(*Interp) error {
	name := "rise"
	if descending {
		name = "fall"
	}
	return func(i *Interp) error {
		v, err := i.pop(name)
		if err != nil {
			return err
		}
		if v.Rank() == 0 {
			return fmt.Errorf("cannot %s a scalar", name)
		}
		rows := v.rows()
		idx := make([]int, len(rows))
		for n := range idx {
			idx[n] = n
		}
		slices.SortStableFunc(idx, func(x, y int) int {
			c := compareRows(rows[x], rows[y])
			if descending {
				return -c
			}
			return c
		})
		data := make([]float64, len(idx))
		for n, k := range idx {
			data[n] = float64(k)
		}
		i.push(Vector(data...))
		return nil
	}
}

func compareRows(x, y Value) int {
	for n := range min(len(x.data), len(y.data)) {
		if c := cmp.Compare(x.data[n], y.data[n]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(x.data), len(y.data))
}

func where(i *Interp) error {
	v, err := i.pop("where")
	if err != nil {
		return err
	}
	if v.Rank() > 1 || v.kind != NumKind {
		return errors.New("where expects a list of counts")
	}
	var data []float64
	for n, x := range v.data {
		if x < 0 || x != math.Trunc(x) {
			return fmt.Errorf("where expects natural numbers, got %s", FormatNum(x))
		}
		if len(data)+int(x) > MaxElements {
			return errTooLarge([]int{len(data) + int(x)})
		}
		for range int(x) {
			data = append(data, float64(n))
		}
	}
	i.push(Vector(data...))
	return nil
}

func deduplicate(i *Interp) error {
	v, err := i.pop("deduplicate")
	if err != nil {
		return err
	}
	if v.Rank() == 0 {
		i.push(v)
		return nil
	}
	var kept []Value
	for _, r := range v.rows() {
		if !slices.ContainsFunc(kept, r.Equal) {
			kept = append(kept, r)
		}
	}
	i.push(rebuild(v, kept))
	return nil
}

func occurrences(i *Interp) error {
	v, err := i.pop("occurrences")
	if err != nil {
		return err
	}
	if v.Rank() == 0 {
		return errors.New("cannot count occurrences in a scalar")
	}
	rows := v.rows()
	data := make([]float64, len(rows))
	for n, r := range rows {
		for _, prev := range rows[:n] {
			if prev.Equal(r) {
				data[n]++
			}
		}
	}
	i.push(Vector(data...))
	return nil
}

// join puts the rows of a before the rows of b.
func join(i *Interp) error {
	a, b, err := i.pop2("join")
	if err != nil {
		return err
	}
	if a.kind != b.kind && len(a.data) > 0 && len(b.data) > 0 {
		return fmt.Errorf("cannot join %s and %s arrays", a.kind, b.kind)
	}
	var rows []Value
	switch {
	case a.Rank() == b.Rank():
		if a.Rank() == 0 {
			rows = []Value{a, b}
		} else {
			rows = append(a.rows(), b.rows()...)
		}
	case a.Rank()+1 == b.Rank():
		rows = append([]Value{a}, b.rows()...)
	case a.Rank() == b.Rank()+1:
		rows = append(a.rows(), b)
	default:
		return fmt.Errorf("cannot join rank %d array with rank %d array", a.Rank(), b.Rank())
	}
	v, err := fromRowsKind(rows, joinedKind(a, b))
	if err != nil {
		return err
	}
	i.push(v)
	return nil
}

func joinedKind(a, b Value) Kind {
	if len(a.data) == 0 {
		return b.kind
	}
	return a.kind
}

// fromRowsKind is fromRows for rows whose kind may differ only when empty.
func fromRowsKind(rows []Value, kind Kind) (Value, error) {
	for n := range rows {
		rows[n].kind = kind
	}
	return fromRows(rows)
}

func couple(i *Interp) error {
	a, b, err := i.pop2("couple")
	if err != nil {
		return err
	}
	v, err := fromRows([]Value{a, b})
	if err != nil {
		return err
	}
	i.push(v)
	return nil
}

// reshape fills the shape given by a with the elements of b, cycling.
func reshape(i *Interp) error {
	a, b, err := i.pop2("reshape")
	if err != nil {
		return err
	}
	if a.Rank() > 1 || a.kind != NumKind {
		return errors.New("shape must be a natural number or a list of them")
	}
	shape := make([]int, len(a.data))
	for n, x := range a.data {
		d, err := natural(Scalar(x), "reshape")
		if err != nil {
			return err
		}
		shape[n] = d
	}
	if a.Rank() == 0 {
		shape = append(shape, b.shape...)
	}
	total := 1
	for _, d := range shape {
		if d != 0 && total > MaxElements/d {
			return errTooLarge(shape)
		}
		total *= d
	}
	if total > 0 && len(b.data) == 0 {
		return errors.New("cannot reshape an empty array")
	}
	data := make([]float64, total)
	for n := range data {
		data[n] = b.data[n%len(b.data)]
	}
	i.push(Value{kind: b.kind, shape: shape, data: data})
	return nil
}

func take(i *Interp) error {
	a, b, err := i.pop2("take")
	if err != nil {
		return err
	}
	n, err := integer(a, "take")
	if err != nil {
		return err
	}
	rows := rowsOf(b)
	if abs(n) > len(rows) {
		return fmt.Errorf("cannot take %d rows from an array with %d rows", n, len(rows))
	}
	if n >= 0 {
		rows = rows[:n]
	} else {
		rows = rows[len(rows)+n:]
	}
	i.push(rebuild(b, rows))
	return nil
}

func drop(i *Interp) error {
	a, b, err := i.pop2("drop")
	if err != nil {
		return err
	}
	n, err := integer(a, "drop")
	if err != nil {
		return err
	}
	rows := rowsOf(b)
	n = max(-len(rows), min(n, len(rows)))
	if n >= 0 {
		rows = rows[n:]
	} else {
		rows = rows[:len(rows)+n]
	}
	i.push(rebuild(b, rows))
	return nil
}

func rotate(i *Interp) error {
	a, b, err := i.pop2("rotate")
	if err != nil {
		return err
	}
	n, err := integer(a, "rotate")
	if err != nil {
		return err
	}
	if b.Rank() == 0 || b.Len() == 0 {
		i.push(b)
		return nil
	}
	rows := b.rows()
	k := ((n % len(rows)) + len(rows)) % len(rows)
	i.push(rebuild(b, append(rows[k:len(rows):len(rows)], rows[:k]...)))
	return nil
}

// selectRows picks rows of b by the indices in a.
func selectRows(i *Interp) error {
	a, b, err := i.pop2("select")
	if err != nil {
		return err
	}
	if a.kind != NumKind {
		return errors.New("indices must be numbers")
	}
	rows := rowsOf(b)
	picked := make([]Value, len(a.data))
	for n, x := range a.data {
		r, err := index(x, len(rows))
		if err != nil {
			return err
		}
		picked[n] = rows[r]
	}
	if a.Rank() == 0 {
		i.push(picked[0])
		return nil
	}
	v, err := fromRows(picked)
	if err != nil {
		return err
	}
	if len(picked) == 0 {
		v = Value{kind: b.kind, shape: append([]int{0}, b.shape[min(1, len(b.shape)):]...)}
	}
	v.shape = append(slices.Clone(a.shape), v.shape[1:]...)
	i.push(v)
	return nil
}

// pick indexes into the leading axes of b with the coordinates in a.
func pick(i *Interp) error {
	a, b, err := i.pop2("pick")
	if err != nil {
		return err
	}
	if a.Rank() > 1 || a.kind != NumKind {
		return errors.New("pick expects a list of indices")
	}
	if len(a.data) > b.Rank() {
		return fmt.Errorf("cannot pick %d indices from a rank %d array", len(a.data), b.Rank())
	}
	v := b
	for _, x := range a.data {
		r, err := index(x, v.Len())
		if err != nil {
			return err
		}
		v = v.row(r)
	}
	i.push(v)
	return nil
}

func keep(i *Interp) error {
	a, b, err := i.pop2("keep")
	if err != nil {
		return err
	}
	rows := rowsOf(b)
	counts := make([]int, len(rows))
	switch {
	case a.Rank() == 0:
		n, err := natural(a, "keep")
		if err != nil {
			return err
		}
		for k := range counts {
			counts[k] = n
		}
	case a.Rank() == 1 && a.Len() == len(rows):
		for k, x := range a.data {
			n, err := natural(Scalar(x), "keep")
			if err != nil {
				return err
			}
			counts[k] = n
		}
	default:
		return fmt.Errorf("cannot keep with counts of shape %s from %d rows", shapeString(a.shape), len(rows))
	}
	var kept []Value
	for k, r := range rows {
		for range counts[k] {
			kept = append(kept, r)
		}
		if len(kept)*max(1, b.rowSize()) > MaxElements {
			return errTooLarge([]int{len(kept)})
		}
	}
	i.push(rebuild(b, kept))
	return nil
}

func match(i *Interp) error {
	a, b, err := i.pop2("match")
	if err != nil {
		return err
	}
	i.push(Scalar(boolNum(a.Equal(b))))
	return nil
}

// rowsOf treats a scalar as a single row.
func rowsOf(v Value) []Value {
	if v.Rank() == 0 {
		return []Value{v}
	}
	return v.rows()
}

// rebuild stacks rows, keeping the row shape of like when rows is empty.
func rebuild(like Value, rows []Value) Value {
	if len(rows) == 0 {
		shape := []int{0}
		if like.Rank() > 0 {
			shape = append(shape, like.shape[1:]...)
		}
		return Value{kind: like.kind, shape: shape}
	}
	v, err := fromRows(rows)
	if err != nil {
		panic(err)
	}
	return v
}

func integer(v Value, name string) (int, error) {
	if !v.isInt() {
		return 0, fmt.Errorf("%s expects an integer, got %s", name, v)
	}
	return int(v.data[0]), nil
}

func natural(v Value, name string) (int, error) {
	n, err := integer(v, name)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%s expects a natural number, got %d", name, n)
	}
	return n, nil
}

// index resolves a possibly negative index into [0, n).
func index(x float64, n int) (int, error) {
	if x != math.Trunc(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("index %s is not an integer", FormatNum(x))
	}
	k := int(x)
	if k < 0 {
		k += n
	}
	if k < 0 || k >= n {
		return 0, fmt.Errorf("index %s is out of bounds of length %d", FormatNum(x), n)
	}
	return k, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

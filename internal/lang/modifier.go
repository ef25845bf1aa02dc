package lang

import (
	"errors"
	"math"
	"slices"
	"strings"
)

// reduce folds the rows of a value. The accumulator is passed on top.
func reduce(i *Interp, f *item) error {
	v, err := i.pop("reduce")
	if err != nil {
		return err
	}
	if v.Rank() == 0 {
		i.push(v)
		return nil
	}
	rows := v.rows()
	if len(rows) == 0 {
		id, ok := reduceIdentity(f)
		if !ok {
			return errors.New("cannot reduce an empty array")
		}
		i.push(Scalar(id))
		return nil
	}
	acc := rows[0]
	for _, r := range rows[1:] {
		if acc, err = i.apply(f, acc, r); err != nil {
			return err
		}
	}
	i.push(acc)
	return nil
}

func reduceIdentity(f *item) (float64, bool) {
	if f.kind != itemPrim {
		return 0, false
	}
	switch f.prim.Name {
	case "add", "subtract":
		return 0, true
	case "multiply", "divide":
		return 1, true
	case "maximum":
		return math.Inf(-1), true
	case "minimum":
		return math.Inf(1), true
	}
	return 0, false
}

// scan is reduce that keeps every intermediate accumulator.
func scan(i *Interp, f *item) error {
	v, err := i.pop("scan")
	if err != nil {
		return err
	}
	if v.Rank() == 0 {
		return errors.New("cannot scan a scalar")
	}
	rows := v.rows()
	if len(rows) == 0 {
		i.push(v)
		return nil
	}
	out := []Value{rows[0]}
	acc := rows[0]
	for _, r := range rows[1:] {
		if acc, err = i.apply(f, acc, r); err != nil {
			return err
		}
		out = append(out, acc)
	}
	res, err := fromRows(out)
	if err != nil {
		return err
	}
	i.push(res)
	return nil
}

// each applies f to every element, keeping the outer shape.
func each(i *Interp, f *item) error {
	v, err := i.pop("each")
	if err != nil {
		return err
	}
	out := make([]Value, len(v.data))
	for n, x := range v.data {
		if out[n], err = i.apply(f, Value{kind: v.kind, data: []float64{x}}); err != nil {
			return err
		}
	}
	if len(out) == 0 {
		i.push(v)
		return nil
	}
	res, err := fromRows(out)
	if err != nil {
		return err
	}
	res.shape = append(slices.Clone(v.shape), res.shape[1:]...)
	i.push(res)
	return nil
}

func rowsMod(i *Interp, f *item) error {
	v, err := i.pop("rows")
	if err != nil {
		return err
	}
	rows := rowsOf(v)
	out := make([]Value, len(rows))
	for n, r := range rows {
		if out[n], err = i.apply(f, r); err != nil {
			return err
		}
	}
	if len(out) == 0 {
		i.push(v)
		return nil
	}
	res, err := fromRows(out)
	if err != nil {
		return err
	}
	i.push(res)
	return nil
}

// table applies f to every pairing of a row of a with a row of b.
func table(i *Interp, f *item) error {
	a, b, err := i.pop2("table")
	if err != nil {
		return err
	}
	outer := make([]Value, 0, a.Len())
	for _, x := range rowsOf(a) {
		inner := make([]Value, 0, b.Len())
		for _, y := range rowsOf(b) {
			r, err := i.apply(f, x, y)
			if err != nil {
				return err
			}
			inner = append(inner, r)
		}
		row, err := fromRows(inner)
		if err != nil {
			return err
		}
		outer = append(outer, row)
	}
	res, err := fromRows(outer)
	if err != nil {
		return err
	}
	i.push(res)
	return nil
}

// repeat calls f a given number of times. An infinite count loops until
// the execution limit stops it.
func repeat(i *Interp, f *item) error {
	v, err := i.pop("repeat")
	if err != nil {
		return err
	}
	if v.Rank() == 0 && v.kind == NumKind && math.IsInf(v.data[0], 1) {
		for {
			if err := i.call(f); err != nil {
				return err
			}
		}
	}
	n, err := natural(v, "repeat")
	if err != nil {
		return err
	}
	for range n {
		if err := i.call(f); err != nil {
			return err
		}
	}
	return nil
}

// dip calls f below the top value.
func dip(i *Interp, f *item) error {
	v, err := i.pop("dip")
	if err != nil {
		return err
	}
	if err := i.call(f); err != nil {
		return err
	}
	i.push(v)
	return nil
}

// stringify pushes the source text of its function.
func stringify(i *Interp, f *item) error {
	if f == nil {
		return errors.New("stringify is missing its function")
	}
	src := f.src
	if f.kind == itemFunc {
		src = strings.TrimSpace(src[1 : len(src)-1])
	}
	i.push(Chars(src))
	return nil
}

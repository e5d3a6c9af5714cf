package types

import (
	"errors"
	"math"
	"testing"

	"symbex/internal/ir"
)

func TestIsSimple(t *testing.T) {
	simple := []ValueType{Runtime, ExactInteger(4), Bool(false), ExactString(0)}
	for _, v := range simple {
		if !v.IsSimple() {
			t.Fatalf("%s should be simple", v)
		}
	}
	abstract := []ValueType{Any, String, Number, Boolean, Pointer(8), Word}
	for _, v := range abstract {
		if v.IsSimple() {
			t.Fatalf("%s should not be simple", v)
		}
	}
	if Runtime.IsConst() {
		t.Fatalf("Runtime is simple but not a constant")
	}
}

func TestLessThanFolding(t *testing.T) {
	cases := []struct {
		lhs, rhs ValueType
		want     ValueType
	}{
		{ExactInteger(2), ExactInteger(5), Bool(true)},
		{ExactInteger(5), ExactInteger(2), Bool(false)},
		{ExactInteger(3), ExactInteger(3), Bool(false)},
		{Number, ExactInteger(1), Boolean},
		{ExactInteger(1), Number, Boolean},
		{Number, Number, Boolean},
	}
	for _, tc := range cases {
		a, ok := tc.lhs.IsComparable()
		if !ok {
			t.Fatalf("%s should be comparable", tc.lhs)
		}
		b, ok := tc.rhs.IsComparable()
		if !ok {
			t.Fatalf("%s should be comparable", tc.rhs)
		}
		if got := LessThan(a, b); got != tc.want {
			t.Fatalf("%s < %s = %s, want %s", tc.lhs, tc.rhs, got, tc.want)
		}
	}
	for _, v := range []ValueType{Any, String, ExactString(1), Boolean, Bool(true), Runtime} {
		if _, ok := v.IsComparable(); ok {
			t.Fatalf("%s should not be comparable", v)
		}
	}
}

func TestAddFolding(t *testing.T) {
	cases := []struct {
		lhs, rhs ValueType
		want     ValueType
	}{
		{ExactInteger(2), ExactInteger(3), ExactInteger(5)},
		{Number, ExactInteger(3), Number},
		{ExactInteger(3), Number, Number},
		{Number, Number, Number},
		{String, String, String},
		{ExactInteger(math.MaxInt64), ExactInteger(1), Number},
		{ExactInteger(math.MinInt64), ExactInteger(-1), Number},
		{ExactInteger(math.MaxInt64), ExactInteger(math.MinInt64), ExactInteger(-1)},
		{ExactInteger(math.MaxInt64 - 1), ExactInteger(1), ExactInteger(math.MaxInt64)},
	}
	for _, tc := range cases {
		a, _ := tc.lhs.IsAddable()
		b, _ := tc.rhs.IsAddable()
		sum, err := Add(a, b)
		if err != nil {
			t.Fatalf("%s + %s: unexpected error %v", tc.lhs, tc.rhs, err)
		}
		if got := sum.ValueType(); got != tc.want {
			t.Fatalf("%s + %s = %s, want %s", tc.lhs, tc.rhs, got, tc.want)
		}
	}
}

func TestAddRejectsMixedOperands(t *testing.T) {
	pairs := [][2]ValueType{
		{String, ExactInteger(1)},
		{Number, String},
	}
	for _, p := range pairs {
		a, _ := p[0].IsAddable()
		b, _ := p[1].IsAddable()
		if _, err := Add(a, b); !errors.Is(err, ErrIncompatibleTypes) {
			t.Fatalf("%s + %s: expected ErrIncompatibleTypes, got %v", p[0], p[1], err)
		}
	}
	for _, v := range []ValueType{ExactString(0), Any, Boolean, Word} {
		if _, ok := v.IsAddable(); ok {
			t.Fatalf("%s should not be addable", v)
		}
	}
}

func TestNegate(t *testing.T) {
	if got, ok := Negate(Bool(true)); !ok || got != Bool(false) {
		t.Fatalf("!Bool(true) = %s", got)
	}
	if got, ok := Negate(Boolean); !ok || got != Boolean {
		t.Fatalf("!Boolean = %s", got)
	}
	if _, ok := Negate(ExactInteger(0)); ok {
		t.Fatalf("integers cannot be negated")
	}
}

func TestCoercion(t *testing.T) {
	cases := []struct {
		val  ValueType
		ffi  ir.FFIType
		want bool
	}{
		{ExactString(0), ir.FFITypeString, true},
		{ExactString(0), ir.FFITypeAny, true},
		{ExactInteger(7), ir.FFIPointerOf(16), false},
		{Pointer(8), ir.FFIPointerOf(16), false},
		{Pointer(16), ir.FFIPointerOf(16), true},
		{Bool(true), ir.FFITypeAny, true},
		{Runtime, ir.FFITypeAny, false},
		{Runtime, ir.FFITypeRuntime, true},
		{Word, ir.FFITypeWord, true},
		{Number, ir.FFITypeString, false},
		{Word, ir.FFITypeAny, false},
	}
	for _, tc := range cases {
		if got := CanCoerce(tc.val, tc.ffi); got != tc.want {
			t.Fatalf("CanCoerce(%s, %+v) = %v, want %v", tc.val, tc.ffi, got, tc.want)
		}
	}
}

func TestFromFFI(t *testing.T) {
	if got := FromFFI(ir.FFIPointerOf(32)); got != Pointer(32) {
		t.Fatalf("pointer widened to %s", got)
	}
	if got := FromFFI(ir.FFITypeString); got != String {
		t.Fatalf("string widened to %s", got)
	}
	if got := FromFFI(ir.FFITypeAny); got != Any {
		t.Fatalf("any widened to %s", got)
	}
}

func TestUnify(t *testing.T) {
	all := []ReturnType{Never, Void, Returns(Any), Returns(ExactInteger(3))}
	for _, x := range all {
		if got, err := Unify(Never, x); err != nil || got != x {
			t.Fatalf("Unify(Never, %s) = %s, %v", x, got, err)
		}
		if got, err := Unify(x, Never); err != nil || got != x {
			t.Fatalf("Unify(%s, Never) = %s, %v", x, got, err)
		}
		if got, err := Unify(x, x); err != nil || got != x {
			t.Fatalf("Unify(%s, %s) = %s, %v", x, x, got, err)
		}
	}
	bad := [][2]ReturnType{
		{Returns(ExactInteger(1)), Returns(ExactInteger(2))},
		{Void, Returns(Number)},
		{Returns(String), Void},
	}
	for _, p := range bad {
		if _, err := Unify(p[0], p[1]); !errors.Is(err, ErrUnsupportedUnify) {
			t.Fatalf("Unify(%s, %s): expected ErrUnsupportedUnify, got %v", p[0], p[1], err)
		}
	}
}

func TestZeroReturnIsNever(t *testing.T) {
	var r ReturnType
	if !r.IsNever() {
		t.Fatalf("zero ReturnType should be Never")
	}
}

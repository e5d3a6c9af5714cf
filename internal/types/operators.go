package types

import "errors"

// ErrIncompatibleTypes is returned when an operator mixes numeric and string operands.
var ErrIncompatibleTypes = errors.New("the types are incompatible")

// Comparable is the view of a value usable by ordering comparisons.
type Comparable struct {
	Abstract bool
	Num      int64
}

// IsComparable reports the comparable view of t.
func (t ValueType) IsComparable() (Comparable, bool) {
	switch t.Kind {
	case KindNumber:
		return Comparable{Abstract: true}, true
	case KindExactInteger:
		return Comparable{Num: t.Int}, true
	}
	return Comparable{}, false
}

// LessThan folds `a < b` when both sides are exact.
func LessThan(a, b Comparable) ValueType {
	if a.Abstract || b.Abstract {
		return Boolean
	}
	return Bool(a.Num < b.Num)
}

// AddableKind classifies operands of addition.
type AddableKind uint8

const (
	AddNumber AddableKind = iota
	AddNum
	AddString
)

// Addable is the view of a value usable by addition.
type Addable struct {
	Kind AddableKind
	Num  int64
}

// IsAddable reports the addable view of t.
func (t ValueType) IsAddable() (Addable, bool) {
	switch t.Kind {
	case KindString:
		return Addable{Kind: AddString}, true
	case KindNumber:
		return Addable{Kind: AddNumber}, true
	case KindExactInteger:
		return Addable{Kind: AddNum, Num: t.Int}, true
	}
	return Addable{}, false
}

// Add folds `a + b`. A constant sum that does not fit in int64 widens to
// Number instead of wrapping, so later comparisons stay undecided.
func Add(a, b Addable) (Addable, error) {
	switch {
	case a.Kind == AddString && b.Kind == AddString:
		return Addable{Kind: AddString}, nil
	case a.Kind == AddString || b.Kind == AddString:
		return Addable{}, ErrIncompatibleTypes
	case a.Kind == AddNum && b.Kind == AddNum:
		sum := a.Num + b.Num
		if (a.Num >= 0) == (b.Num >= 0) && (sum >= 0) != (a.Num >= 0) {
			return Addable{Kind: AddNumber}, nil
		}
		return Addable{Kind: AddNum, Num: sum}, nil
	default:
		return Addable{Kind: AddNumber}, nil
	}
}

// ValueType converts the result of an addition back into the lattice.
func (a Addable) ValueType() ValueType {
	switch a.Kind {
	case AddNum:
		return ExactInteger(a.Num)
	case AddString:
		return String
	default:
		return Number
	}
}

// Negate folds boolean negation. The second result is false when t is not
// a boolean.
func Negate(t ValueType) (ValueType, bool) {
	switch t.Kind {
	case KindBoolean:
		return Boolean, true
	case KindBool:
		return Bool(!t.Bool), true
	}
	return ValueType{}, false
}

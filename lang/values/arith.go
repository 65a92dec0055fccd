package values

import (
	"math"

	"github.com/kscript-lang/kscript/lang/errs"
)

// BinOp identifies the arithmetic operator for Arith.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpExp
)

// Arith evaluates a binary arithmetic operator over two number values,
// following the coercion rule in spec.md §4.5: if either operand is Float
// the result is Float, otherwise the result is Integer. Exp with an
// integer base and a non-negative integer exponent uses integer
// exponentiation; a negative integer exponent is a DivideByZero-class
// error; any Float operand uses math.Pow.
func Arith(op BinOp, left, right Value) (Value, error) {
	lf, lIsFloat, lOK := asNumber(left)
	rf, rIsFloat, rOK := asNumber(right)
	if !lOK || !rOK {
		return nil, errs.NewRuntimeError(errs.TypeMismatch, "arithmetic requires numbers, got %s and %s", left.Type(), right.Type())
	}

	if !lIsFloat && !rIsFloat {
		li, ri := int64(left.(Integer)), int64(right.(Integer))
		switch op {
		case OpAdd:
			return Integer(li + ri), nil
		case OpSub:
			return Integer(li - ri), nil
		case OpMul:
			return Integer(li * ri), nil
		case OpDiv:
			if ri == 0 {
				return nil, errs.NewRuntimeError(errs.DivideByZero, "integer division by zero")
			}
			return Integer(li / ri), nil
		case OpRem:
			if ri == 0 {
				return nil, errs.NewRuntimeError(errs.DivideByZero, "integer remainder by zero")
			}
			return Integer(li % ri), nil
		case OpExp:
			if ri < 0 {
				return nil, errs.NewRuntimeError(errs.DivideByZero, "negative exponent %d for integer base", ri)
			}
			return Integer(intPow(li, ri)), nil
		}
	}

	switch op {
	case OpAdd:
		return Float(lf + rf), nil
	case OpSub:
		return Float(lf - rf), nil
	case OpMul:
		return Float(lf * rf), nil
	case OpDiv:
		return Float(lf / rf), nil
	case OpRem:
		return Float(math.Mod(lf, rf)), nil
	case OpExp:
		return Float(math.Pow(lf, rf)), nil
	}
	panic("values: unreachable binop")
}

func intPow(base, exp int64) int64 {
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func asNumber(v Value) (f float64, isFloat, ok bool) {
	switch n := v.(type) {
	case Integer:
		return float64(n), false, true
	case Float:
		return float64(n), true, true
	default:
		return 0, false, false
	}
}

// CmpOp identifies the comparison operator for Compare.
type CmpOp int

const (
	CmpEquals CmpOp = iota
	CmpLess
	CmpGreater
	CmpLessEq
	CmpGreaterEq
)

// Compare evaluates a comparison operator. Numbers compare by numeric value
// (with the usual coercion to float when mixed); booleans compare only
// with booleans; strings compare by byte value; any other pairing, or a
// bool/number/string mismatch, is a TypeMismatch. Comparisons against a NaN
// float always produce false, per spec.md §8.
func Compare(op CmpOp, left, right Value) (Bool, error) {
	switch l := left.(type) {
	case Bool:
		r, ok := right.(Bool)
		if !ok {
			return false, errs.NewRuntimeError(errs.TypeMismatch, "cannot compare bool with %s", right.Type())
		}
		if op != CmpEquals {
			return false, errs.NewRuntimeError(errs.TypeMismatch, "bool only supports equality comparison")
		}
		return Bool(l == r), nil

	case String:
		r, ok := right.(String)
		if !ok {
			return false, errs.NewRuntimeError(errs.TypeMismatch, "cannot compare string with %s", right.Type())
		}
		return compareOrdered(op, strCmp(l.Raw(), r.Raw())), nil

	case Integer, Float:
		lf, _, _ := asNumber(left)
		rf, _, rOK := asNumber(right)
		if !rOK {
			return false, errs.NewRuntimeError(errs.TypeMismatch, "cannot compare number with %s", right.Type())
		}
		if math.IsNaN(lf) || math.IsNaN(rf) {
			return false, nil
		}
		switch {
		case lf < rf:
			return compareOrdered(op, -1), nil
		case lf > rf:
			return compareOrdered(op, 1), nil
		default:
			return compareOrdered(op, 0), nil
		}

	default:
		return false, errs.NewRuntimeError(errs.TypeMismatch, "value of type %s is not comparable", left.Type())
	}
}

func strCmp(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareOrdered(op CmpOp, sign int) Bool {
	switch op {
	case CmpEquals:
		return sign == 0
	case CmpLess:
		return sign < 0
	case CmpGreater:
		return sign > 0
	case CmpLessEq:
		return sign <= 0
	case CmpGreaterEq:
		return sign >= 0
	}
	panic("values: unreachable cmpop")
}

package algebra

// Number constrains the numeric domains the operator catalogue is defined
// over. Boolean domains use the dedicated logical operators.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Operator is a pure binary map D1 × D2 → D3. Blocksize, when positive,
// hints the executor's vectorized loops; zero defers to the configured
// default. Operators carry no storage and may be copied freely.
type Operator[D1, D2, D3 any] struct {
	Apply     func(a D1, b D2) D3
	Blocksize int
}

// Add returns the arithmetic addition operator.
func Add[D Number]() Operator[D, D, D] {
	return Operator[D, D, D]{Apply: func(a, b D) D { return a + b }}
}

// Mul returns the arithmetic multiplication operator.
func Mul[D Number]() Operator[D, D, D] {
	return Operator[D, D, D]{Apply: func(a, b D) D { return a * b }}
}

// Sub returns the arithmetic subtraction operator.
func Sub[D Number]() Operator[D, D, D] {
	return Operator[D, D, D]{Apply: func(a, b D) D { return a - b }}
}

// Div returns the arithmetic division operator. Division by zero follows
// the language rules of the domain (panic for integers, ±Inf/NaN for
// floats); callers guard their inputs.
func Div[D Number]() Operator[D, D, D] {
	return Operator[D, D, D]{Apply: func(a, b D) D { return a / b }}
}

// Max returns the maximum operator.
func Max[D Number]() Operator[D, D, D] {
	return Operator[D, D, D]{Apply: func(a, b D) D {
		if a > b {
			return a
		}
		return b
	}}
}

// Min returns the minimum operator.
func Min[D Number]() Operator[D, D, D] {
	return Operator[D, D, D]{Apply: func(a, b D) D {
		if a < b {
			return a
		}
		return b
	}}
}

// AbsDiff returns |a-b| computed without leaving the domain.
func AbsDiff[D Number]() Operator[D, D, D] {
	return Operator[D, D, D]{Apply: func(a, b D) D {
		if a > b {
			return a - b
		}
		return b - a
	}}
}

// ReLU returns max(a, b) where b conventionally carries the threshold;
// with b = zero this is the rectifier.
func ReLU[D Number]() Operator[D, D, D] {
	return Max[D]()
}

// Equal returns the equality test as a boolean-valued operator.
func Equal[D comparable]() Operator[D, D, bool] {
	return Operator[D, D, bool]{Apply: func(a, b D) bool { return a == b }}
}

// LeftAssign returns its left argument.
func LeftAssign[D any]() Operator[D, D, D] {
	return Operator[D, D, D]{Apply: func(a, _ D) D { return a }}
}

// RightAssign returns its right argument.
func RightAssign[D any]() Operator[D, D, D] {
	return Operator[D, D, D]{Apply: func(_, b D) D { return b }}
}

// LeftAssignIf returns the left argument when the right one is true, and
// the domain zero value otherwise.
func LeftAssignIf[D any]() Operator[D, bool, D] {
	return Operator[D, bool, D]{Apply: func(a D, cond bool) D {
		if cond {
			return a
		}
		var zero D
		return zero
	}}
}

// Lor returns logical disjunction.
func Lor() Operator[bool, bool, bool] {
	return Operator[bool, bool, bool]{Apply: func(a, b bool) bool { return a || b }}
}

// Land returns logical conjunction.
func Land() Operator[bool, bool, bool] {
	return Operator[bool, bool, bool]{Apply: func(a, b bool) bool { return a && b }}
}

// WithBlocksize returns a copy of op carrying the given blocking hint.
// Non-positive values are ignored.
func (op Operator[D1, D2, D3]) WithBlocksize(bs int) Operator[D1, D2, D3] {
	if bs > 0 {
		op.Blocksize = bs
	}
	return op
}

// UnaryPredicate tests a single value; used by value-based Select variants.
type UnaryPredicate[T any] func(v T) bool

// IndexPredicate tests a coordinate and its value; used by structural
// Select variants such as triangular extraction.
type IndexPredicate[T any] func(i, j int, v T) bool

// IsPositive reports v > 0.
func IsPositive[D Number]() UnaryPredicate[D] {
	return func(v D) bool { return v > 0 }
}

// IsNonzero reports v != 0.
func IsNonzero[D Number]() UnaryPredicate[D] {
	return func(v D) bool { return v != 0 }
}

// IsStrictlyUpper keeps entries strictly above the diagonal.
func IsStrictlyUpper[T any]() IndexPredicate[T] {
	return func(i, j int, _ T) bool { return i < j }
}

// IsStrictlyLower keeps entries strictly below the diagonal.
func IsStrictlyLower[T any]() IndexPredicate[T] {
	return func(i, j int, _ T) bool { return i > j }
}

package algebra

// Monoid is an associative and commutative operator over a single domain
// together with an identity element generator. Constructors in this file
// only admit operator/identity pairs satisfying the monoid laws; NewMonoid
// is available for user-supplied structures and trusts its caller.
type Monoid[D any] struct {
	Op       Operator[D, D, D]
	Identity func() D
}

// NewMonoid builds a monoid from an operator and an identity generator.
// The caller asserts associativity and commutativity; the executor relies
// on both to reassociate reductions across tiles.
func NewMonoid[D any](op Operator[D, D, D], identity func() D) Monoid[D] {
	return Monoid[D]{Op: op, Identity: identity}
}

// Plus is the additive monoid with identity zero.
func Plus[D Number]() Monoid[D] {
	return NewMonoid(Add[D](), Zero[D])
}

// Times is the multiplicative monoid with identity one.
func Times[D Number]() Monoid[D] {
	return NewMonoid(Mul[D](), One[D])
}

// MaxMonoid reduces under max; its identity is the domain's minimum
// representable element (−∞ for floats).
func MaxMonoid[D Number]() Monoid[D] {
	return NewMonoid(Max[D](), MinusInf[D])
}

// MinMonoid reduces under min; its identity is the domain's maximum
// representable element (+∞ for floats).
func MinMonoid[D Number]() Monoid[D] {
	return NewMonoid(Min[D](), PlusInf[D])
}

// LorMonoid is logical disjunction with identity false.
func LorMonoid() Monoid[bool] {
	return NewMonoid(Lor(), LogicalFalse)
}

// LandMonoid is logical conjunction with identity true.
func LandMonoid() Monoid[bool] {
	return NewMonoid(Land(), LogicalTrue)
}

// Zero generates the additive identity of the domain.
func Zero[D Number]() D { var z D; return z }

// One generates the multiplicative identity of the domain.
func One[D Number]() D { var z D; return z + 1 }

// PlusInf generates the largest representable element: +Inf for floating
// point domains, the saturation value for integral ones. The bound is found
// by doubling until the domain overflows, which terminates for every
// admitted domain (floats reach +Inf, integers wrap).
func PlusInf[D Number]() D {
	m := D(1)
	for m+m > m {
		m += m
	}
	return m - 1 + m
}

// MinusInf generates the smallest representable element: -Inf for floating
// point domains, the minimum value for signed integers, zero for unsigned.
func MinusInf[D Number]() D {
	var z D
	if z-1 > z { // unsigned domains wrap below zero
		return z
	}
	return -PlusInf[D]() - 1
}

// LogicalTrue generates the boolean identity of conjunction.
func LogicalTrue() bool { return true }

// LogicalFalse generates the boolean identity of disjunction.
func LogicalFalse() bool { return false }

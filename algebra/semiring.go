package algebra

// Semiring pairs an additive monoid over D3 with a multiplicative operator
// D1 × D2 → D3. The chaining rule is enforced by the type parameters: a
// semiring whose operator does not feed the monoid's domain cannot be
// constructed. Distributivity and annihilation are asserted by the
// constructor's caller for user-supplied structures; the catalogue rings
// below satisfy them.
type Semiring[D1, D2, D3 any] struct {
	Add Monoid[D3]
	Mul Operator[D1, D2, D3]
}

// NewSemiring builds a semiring from an additive monoid and a compatible
// multiplicative operator.
func NewSemiring[D1, D2, D3 any](add Monoid[D3], mul Operator[D1, D2, D3]) Semiring[D1, D2, D3] {
	return Semiring[D1, D2, D3]{Add: add, Mul: mul}
}

// PlusTimes is the conventional arithmetic semiring (+, ×, 0, 1).
func PlusTimes[D Number]() Semiring[D, D, D] {
	return NewSemiring(Plus[D](), Mul[D]())
}

// MinPlus is the tropical semiring (min, +, +∞, 0) used for shortest paths.
func MinPlus[D Number]() Semiring[D, D, D] {
	return NewSemiring(MinMonoid[D](), Add[D]())
}

// MaxPlus is the scheduling semiring (max, +, −∞, 0).
func MaxPlus[D Number]() Semiring[D, D, D] {
	return NewSemiring(MaxMonoid[D](), Add[D]())
}

// LorLand is the boolean semiring (∨, ∧, false, true) used by reachability
// and BFS frontier sweeps.
func LorLand() Semiring[bool, bool, bool] {
	return NewSemiring(LorMonoid(), Land())
}

// Package algebra is the compile-time registry of algebraic structures that
// parameterize every grb primitive: binary operators, monoids, and semirings
// together with typed identity generators.
//
// What
//
//   - Operator[D1, D2, D3]: a pure binary map D1 × D2 → D3 with an optional
//     blocking hint consumed by vectorized inner loops.
//   - Monoid[D]: an associative and commutative operator over one domain plus
//     an identity element generator.
//   - Semiring[D1, D2, D3]: an additive monoid paired with a multiplicative
//     operator under the chaining rule mul: D1 × D2 → D3, add: D3 × D3 → D3.
//     Domain consistency is enforced by the type parameters at compile time;
//     a semiring whose domains do not chain does not type-check.
//   - Identity generators Zero, One, PlusInf, MinusInf, LogicalTrue and
//     LogicalFalse resolving to the natural element of each domain.
//
// Why
//
//	Primitives are generic over the bundle {add, mul, zero, one}. Keeping
//	the structures as plain structs of function fields lets the compiler
//	inline the operator into the executor's tile loops; the package itself
//	carries no runtime state.
//
// Determinism
//
//	All catalogue operators are pure functions. Monoid-based reductions may
//	be reassociated freely by the executor; only associative + commutative
//	operators are admitted as monoids.
package algebra

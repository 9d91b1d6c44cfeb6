// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FormulaPair names two formulas whose co-occurrence is counted across
// paper full texts. Pairs are compared by value; the list may hold the
// same pair more than once and each occurrence is processed on its own.
type FormulaPair struct {
	Left  string `json:"left" yaml:"left" toml:"left"`
	Right string `json:"right" yaml:"right" toml:"right"`
}

// String renders the pair the way progress output shows it.
func (p FormulaPair) String() string {
	return p.Left + "  +  " + p.Right
}

var defaultPairs = []FormulaPair{
	{Left: "transverse mass", Right: "Euclidean norm (L2 norm)"},
	{
		Left:  "Net demand for product p in country i",
		Right: "Net demand for product p in country i",
	},
	{Left: "forward-backward asymmetry", Right: "asymmetry index"},
	{
		Left:  "bidoublet field",
		Right: "conjugate transpose of the unitary operator",
	},
	{
		Left:  "adjoint of a product of operators",
		Right: "adjoint of a composition of linear operators",
	},
	{Left: "cross-spectrum estimator", Right: "average potential outcome estimator"},
	{Left: "d-type form factor", Right: "helpful generalized Lee bound"},
	{
		Left:  "Polarization sum rule for W boson polarization vectors",
		Right: "Exchangeability condition for the error term",
	},
	{Left: "n-dimensional unit simplex", Right: "unit simplex in N dimensions"},
	{Left: "n-dimensional standard simplex", Right: "probability simplex"},
}

// DefaultPairs returns a copy of the built-in pair list in its fixed order.
func DefaultPairs() []FormulaPair {
	out := make([]FormulaPair, len(defaultPairs))
	copy(out, defaultPairs)
	return out
}

// SPDX-License-Identifier: MIT

package matrix

import "gonum.org/v1/gonum/mat"

// Add returns a new Dense holding the element-wise sum a+b.
// Complexity: O(r*c).
func Add(a, b Matrix) (*Dense, error) {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return nil, ErrDimensionMismatch
	}
	out, err := NewDense(a.Rows(), a.Cols())
	if err != nil {
		return nil, err
	}
	for i := 0; i < a.Rows(); i++ {
		for j := 0; j < a.Cols(); j++ {
			av, _ := a.At(i, j)
			bv, _ := b.At(i, j)
			_ = out.Set(i, j, av+bv)
		}
	}

	return out, nil
}

// Scale returns a new Dense holding alpha*m.
// Complexity: O(r*c).
func Scale(m Matrix, alpha float64) (*Dense, error) {
	out, err := NewDense(m.Rows(), m.Cols())
	if err != nil {
		return nil, err
	}
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, _ := m.At(i, j)
			_ = out.Set(i, j, alpha*v)
		}
	}

	return out, nil
}

// ToGonum copies m into a *mat.Dense for consumption by the gonum-backed
// solver adapter. Gonum owns its own dense storage, so this is a copy,
// not a view.
func ToGonum(m Matrix) *mat.Dense {
	out := mat.NewDense(m.Rows(), m.Cols(), nil)
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, _ := m.At(i, j)
			out.Set(i, j, v)
		}
	}

	return out
}

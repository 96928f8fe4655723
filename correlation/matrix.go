// SPDX-License-Identifier: MIT

package correlation

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvsynth/matrix"
)

// Method tags how a Matrix was computed.
type Method string

const (
	Pearson           Method = "pearson"
	Spearman          Method = "spearman"
	MutualInformation Method = "mutual_information"
)

// ErrUnknownMethod is returned by ParseMethod and Analyzer.Calculate.
var ErrUnknownMethod = errors.New("correlation: unknown method")

// ErrUnknownVariable is returned when a Matrix lookup names a variable it does not hold.
var ErrUnknownVariable = errors.New("correlation: unknown variable")

// ParseMethod maps a configuration string onto a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Pearson, Spearman, MutualInformation:
		return m, nil
	case "":
		return Pearson, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Matrix is a labelled square dependence matrix.
type Matrix struct {
	Variables []string    `json:"variables"`
	Values    [][]float64 `json:"matrix"`
	Method    Method      `json:"method"`
}

// newMatrix allocates an identity-diagonal matrix over variables.
func newMatrix(variables []string, method Method) Matrix {
	n := len(variables)
	vals := make([][]float64, n)
	for i := range vals {
		vals[i] = make([]float64, n)
		vals[i][i] = 1
	}
	vars := make([]string, n)
	copy(vars, variables)

	return Matrix{Variables: vars, Values: vals, Method: method}
}

// Index returns the position of name, or -1.
func (m Matrix) Index(name string) int {
	for i, v := range m.Variables {
		if v == name {
			return i
		}
	}

	return -1
}

// At returns the coefficient between a and b.
func (m Matrix) At(a, b string) (float64, error) {
	i, j := m.Index(a), m.Index(b)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariable, a)
	}
	if j < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVariable, b)
	}

	return m.Values[i][j], nil
}

// Dense copies the coefficients into a matrix.Dense.
func (m Matrix) Dense() (*matrix.Dense, error) {
	return matrix.NewDenseFromRows(m.Values)
}

// Subset returns the matrix restricted to names, in the order given.
func (m Matrix) Subset(names []string) (Matrix, error) {
	idx := make([]int, len(names))
	for k, name := range names {
		if idx[k] = m.Index(name); idx[k] < 0 {
			return Matrix{}, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
		}
	}
	d, err := m.Dense()
	if err != nil {
		return Matrix{}, fmt.Errorf("correlation: subset: %w", err)
	}
	sub, err := d.Induced(idx, idx)
	if err != nil {
		return Matrix{}, fmt.Errorf("correlation: subset: %w", err)
	}
	vars := make([]string, len(names))
	copy(vars, names)

	return Matrix{Variables: vars, Values: sub.ToRows(), Method: m.Method}, nil
}

// Threshold returns a copy where off-diagonal |r| < min is forced to 0.
func (m Matrix) Threshold(min float64) Matrix {
	out := newMatrix(m.Variables, m.Method)
	for i := range m.Values {
		for j := range m.Values[i] {
			if i == j {
				out.Values[i][j] = m.Values[i][j]
				continue
			}
			if math.Abs(m.Values[i][j]) >= min {
				out.Values[i][j] = m.Values[i][j]
			}
		}
	}

	return out
}

// MaxAbsOffDiagonal returns, per variable, the largest |r| with any other variable.
func (m Matrix) MaxAbsOffDiagonal() []float64 {
	out := make([]float64, len(m.Variables))
	for i := range m.Values {
		for j, v := range m.Values[i] {
			if i != j && math.Abs(v) > out[i] {
				out[i] = math.Abs(v)
			}
		}
	}

	return out
}

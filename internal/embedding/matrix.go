package embedding

import "gonum.org/v1/gonum/mat"

// Matrix is an embedding matrix: one row per input text.
// The column count is kept separately so an empty batch still has a shape.
type Matrix struct {
	rows [][]float64
	cols int
}

func newMatrix(rows [][]float64, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols}
}

// Shape returns (number of texts, embedding dimension).
func (m *Matrix) Shape() (int, int) { return len(m.rows), m.cols }

// Len returns the number of rows.
func (m *Matrix) Len() int { return len(m.rows) }

// Dim returns the number of columns.
func (m *Matrix) Dim() int { return m.cols }

// Row returns row i. It panics if i is out of range, like slice indexing.
func (m *Matrix) Row(i int) []float64 { return m.rows[i] }

// Rows exposes all rows in input order.
func (m *Matrix) Rows() [][]float64 { return m.rows }

// Head returns at most the first n rows.
func (m *Matrix) Head(n int) [][]float64 {
	if n < 0 {
		n = 0
	}
	if n > len(m.rows) {
		n = len(m.rows)
	}
	return m.rows[:n]
}

// Dense copies the matrix into a gonum Dense. It returns nil for an empty
// matrix because gonum does not allow zero-sized dimensions.
func (m *Matrix) Dense() *mat.Dense {
	if len(m.rows) == 0 || m.cols == 0 {
		return nil
	}
	data := make([]float64, 0, len(m.rows)*m.cols)
	for _, r := range m.rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(m.rows), m.cols, data)
}

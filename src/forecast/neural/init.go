package neural

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// GlorotUniform draws a rows x cols matrix from U(-l, l) with
// l = sqrt(6 / (rows + cols)).
func GlorotUniform(rows, cols int, src rand.Source) *mat.Dense {
	limit := math.Sqrt(6.0 / float64(rows+cols))
	dist := distuv.Uniform{Min: -limit, Max: limit, Src: src}

	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(rows, cols, data)
}

// -----------------------------------------------------------------------------

// Orthogonal returns a rows x cols matrix with orthonormal rows or columns
// (whichever is shorter), built from the QR factorization of a standard
// normal draw. Signs follow the diagonal of R so the result is uniformly
// distributed.
func Orthogonal(rows, cols int, src rand.Source) *mat.Dense {
	// QR needs a tall matrix; factor the transpose when wide.
	tall, short := rows, cols
	if rows < cols {
		tall, short = cols, rows
	}

	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	data := make([]float64, tall*short)
	for i := range data {
		data[i] = dist.Rand()
	}
	a := mat.NewDense(tall, short, data)

	var qr mat.QR
	qr.Factorize(a)

	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)

	out := mat.NewDense(tall, short, nil)
	for j := 0; j < short; j++ {
		sign := 1.0
		if r.At(j, j) < 0 {
			sign = -1.0
		}
		for i := 0; i < tall; i++ {
			out.Set(i, j, sign*q.At(i, j))
		}
	}

	if rows < cols {
		return mat.DenseCopyOf(out.T())
	}
	return out
}

// -----------------------------------------------------------------------------

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

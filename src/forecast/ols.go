package forecast

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// OLSModel is an ordinary least squares fit with an intercept.
type OLSModel struct {
	Intercept float64
	Coef      []float64
}

// -----------------------------------------------------------------------------

// FitOLS solves min ||y - b0 - X b|| on the mean-centred design through the
// SVD pseudo-inverse. Singular values below eps*max(n,p) of the largest are
// truncated, giving the minimum-norm solution for rank-deficient designs such
// as collinear moving averages.
func FitOLS(X [][]float64, y []float64) (*OLSModel, error) {
	n := len(X)
	if n == 0 || n != len(y) {
		return nil, errors.New("ols: empty or misaligned training set")
	}
	p := len(X[0])

	xMean := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		xMean[j] = stat.Mean(col, nil)
	}
	yMean := stat.Mean(y, nil)

	design := mat.NewDense(n, p, nil)
	target := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			design.Set(i, j, v-xMean[j])
		}
		target.SetVec(i, y[i]-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return nil, errors.New("ols: SVD factorization failed")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	rcond := math.Nextafter(1, 2) - 1
	rcond *= float64(max(n, p))

	coef := mat.NewVecDense(p, nil)
	if len(values) > 0 && values[0] > 0 {
		cutoff := rcond * values[0]
		for k, s := range values {
			if s <= cutoff {
				break
			}
			// coef += v_k * (u_k . y) / s_k
			w := mat.Dot(u.ColView(k), target) / s
			coef.AddScaledVec(coef, w, v.ColView(k))
		}
	}

	model := &OLSModel{Intercept: yMean, Coef: make([]float64, p)}
	for j := 0; j < p; j++ {
		model.Coef[j] = coef.AtVec(j)
		model.Intercept -= model.Coef[j] * xMean[j]
	}
	return model, nil
}

// -----------------------------------------------------------------------------

func (m *OLSModel) Predict(x []float64) float64 {
	out := m.Intercept
	for j, c := range m.Coef {
		out += c * x[j]
	}
	return out
}

// -----------------------------------------------------------------------------

func (m *OLSModel) PredictAll(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = m.Predict(row)
	}
	return out
}

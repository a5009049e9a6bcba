package neural

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Param is a trainable matrix together with its accumulated gradient.
type Param struct {
	Name  string
	Value *mat.Dense
	Grad  *mat.Dense

	m []float64
	v []float64
}

func newParam(name string, value *mat.Dense) *Param {
	r, c := value.Dims()
	return &Param{
		Name:  name,
		Value: value,
		Grad:  mat.NewDense(r, c, nil),
		m:     make([]float64, r*c),
		v:     make([]float64, r*c),
	}
}

// -----------------------------------------------------------------------------

// ZeroGrad clears the accumulated gradient.
func (p *Param) ZeroGrad() {
	p.Grad.Zero()
}

// -----------------------------------------------------------------------------

// Adam implements the Adam optimizer with bias-corrected step size.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	step int
}

// NewAdam returns an optimizer with the usual moment decay rates.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
	}
}

// -----------------------------------------------------------------------------

// Step applies one update to every parameter from its current gradient.
func (a *Adam) Step(params []*Param) {
	a.step++
	t := float64(a.step)
	lr := a.LearningRate * math.Sqrt(1-math.Pow(a.Beta2, t)) / (1 - math.Pow(a.Beta1, t))

	for _, p := range params {
		value := p.Value.RawMatrix()
		grad := p.Grad.RawMatrix()
		rows, cols := p.Value.Dims()

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				k := r*cols + c
				g := grad.Data[r*grad.Stride+c]

				p.m[k] = a.Beta1*p.m[k] + (1-a.Beta1)*g
				p.v[k] = a.Beta2*p.v[k] + (1-a.Beta2)*g*g
				value.Data[r*value.Stride+c] -= lr * p.m[k] / (math.Sqrt(p.v[k]) + a.Epsilon)
			}
		}
	}
}

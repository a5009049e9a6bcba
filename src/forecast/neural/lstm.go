package neural

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// LSTM is a single recurrent layer. Gate blocks in the kernel, recurrent
// and bias matrices are ordered input, forget, cell, output.
type LSTM struct {
	InputSize int
	Units     int

	Kernel    *Param // InputSize x 4*Units
	Recurrent *Param // Units x 4*Units
	Bias      *Param // 1 x 4*Units

	// forward cache for backpropagation through time
	inputs []*mat.Dense
	hidden []*mat.Dense // len T+1, hidden[0] is the zero state
	cells  []*mat.Dense
	gates  []*mat.Dense // activated gates per step
}

// -----------------------------------------------------------------------------

// NewLSTM initializes the kernel with Glorot uniform weights, the recurrent
// matrix orthogonally, and the forget gate bias to one.
func NewLSTM(name string, inputSize, units int, src rand.Source) *LSTM {
	bias := mat.NewDense(1, 4*units, nil)
	for u := 0; u < units; u++ {
		bias.Set(0, units+u, 1)
	}

	return &LSTM{
		InputSize: inputSize,
		Units:     units,
		Kernel:    newParam(name+"/kernel", GlorotUniform(inputSize, 4*units, src)),
		Recurrent: newParam(name+"/recurrent", Orthogonal(units, 4*units, src)),
		Bias:      newParam(name+"/bias", bias),
	}
}

// -----------------------------------------------------------------------------

func (l *LSTM) Params() []*Param {
	return []*Param{l.Kernel, l.Recurrent, l.Bias}
}

// -----------------------------------------------------------------------------

// Forward runs the layer over xs (one batch x InputSize matrix per time
// step) and returns the hidden state at every step.
func (l *LSTM) Forward(xs []*mat.Dense) []*mat.Dense {
	steps := len(xs)
	batch, _ := xs[0].Dims()
	U := l.Units

	l.inputs = xs
	l.hidden = make([]*mat.Dense, steps+1)
	l.cells = make([]*mat.Dense, steps+1)
	l.gates = make([]*mat.Dense, steps)
	l.hidden[0] = mat.NewDense(batch, U, nil)
	l.cells[0] = mat.NewDense(batch, U, nil)

	bias := l.Bias.Value.RawRowView(0)
	for t := 0; t < steps; t++ {
		z := mat.NewDense(batch, 4*U, nil)
		z.Mul(xs[t], l.Kernel.Value)

		var rec mat.Dense
		rec.Mul(l.hidden[t], l.Recurrent.Value)
		z.Add(z, &rec)

		h := mat.NewDense(batch, U, nil)
		c := mat.NewDense(batch, U, nil)
		for b := 0; b < batch; b++ {
			row := z.RawRowView(b)
			prevC := l.cells[t].RawRowView(b)
			cRow := c.RawRowView(b)
			hRow := h.RawRowView(b)

			for u := 0; u < U; u++ {
				i := sigmoid(row[u] + bias[u])
				f := sigmoid(row[U+u] + bias[U+u])
				g := math.Tanh(row[2*U+u] + bias[2*U+u])
				o := sigmoid(row[3*U+u] + bias[3*U+u])
				row[u], row[U+u], row[2*U+u], row[3*U+u] = i, f, g, o

				cRow[u] = f*prevC[u] + i*g
				hRow[u] = o * math.Tanh(cRow[u])
			}
		}

		l.gates[t] = z
		l.cells[t+1] = c
		l.hidden[t+1] = h
	}

	return l.hidden[1:]
}

// -----------------------------------------------------------------------------

// Backward accumulates parameter gradients from dOut, the loss gradient with
// respect to each step's hidden output (nil where the step received none),
// and returns the gradient with respect to each step's input.
func (l *LSTM) Backward(dOut []*mat.Dense) []*mat.Dense {
	steps := len(l.inputs)
	batch, _ := l.inputs[0].Dims()
	U := l.Units

	dh := mat.NewDense(batch, U, nil)
	dc := mat.NewDense(batch, U, nil)
	dz := mat.NewDense(batch, 4*U, nil)
	dxs := make([]*mat.Dense, steps)
	biasGrad := l.Bias.Grad.RawRowView(0)

	for t := steps - 1; t >= 0; t-- {
		for b := 0; b < batch; b++ {
			gates := l.gates[t].RawRowView(b)
			cRow := l.cells[t+1].RawRowView(b)
			prevC := l.cells[t].RawRowView(b)
			dhRow := dh.RawRowView(b)
			dcRow := dc.RawRowView(b)
			dzRow := dz.RawRowView(b)

			var outRow []float64
			if dOut[t] != nil {
				outRow = dOut[t].RawRowView(b)
			}

			for u := 0; u < U; u++ {
				i, f, g, o := gates[u], gates[U+u], gates[2*U+u], gates[3*U+u]

				dhu := dhRow[u]
				if outRow != nil {
					dhu += outRow[u]
				}
				tc := math.Tanh(cRow[u])
				dcu := dcRow[u] + dhu*o*(1-tc*tc)

				dzRow[u] = dcu * g * i * (1 - i)
				dzRow[U+u] = dcu * prevC[u] * f * (1 - f)
				dzRow[2*U+u] = dcu * i * (1 - g*g)
				dzRow[3*U+u] = dhu * tc * o * (1 - o)

				dcRow[u] = dcu * f
			}

			for k, v := range dzRow {
				biasGrad[k] += v
			}
		}

		var gk mat.Dense
		gk.Mul(l.inputs[t].T(), dz)
		l.Kernel.Grad.Add(l.Kernel.Grad, &gk)

		var gr mat.Dense
		gr.Mul(l.hidden[t].T(), dz)
		l.Recurrent.Grad.Add(l.Recurrent.Grad, &gr)

		dx := mat.NewDense(batch, l.InputSize, nil)
		dx.Mul(dz, l.Kernel.Value.T())
		dxs[t] = dx

		dh.Mul(dz, l.Recurrent.Value.T())
	}

	return dxs
}

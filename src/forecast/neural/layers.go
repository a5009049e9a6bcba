package neural

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Dense is a fully connected linear layer.
type Dense struct {
	Weights *Param // In x Out
	Bias    *Param // 1 x Out

	input *mat.Dense
}

func NewDense(name string, in, out int, src rand.Source) *Dense {
	return &Dense{
		Weights: newParam(name+"/kernel", GlorotUniform(in, out, src)),
		Bias:    newParam(name+"/bias", mat.NewDense(1, out, nil)),
	}
}

// -----------------------------------------------------------------------------

func (d *Dense) Params() []*Param {
	return []*Param{d.Weights, d.Bias}
}

// -----------------------------------------------------------------------------

func (d *Dense) Forward(x *mat.Dense) *mat.Dense {
	d.input = x
	batch, _ := x.Dims()
	_, out := d.Weights.Value.Dims()

	y := mat.NewDense(batch, out, nil)
	y.Mul(x, d.Weights.Value)
	bias := d.Bias.Value.RawRowView(0)
	for b := 0; b < batch; b++ {
		row := y.RawRowView(b)
		for k := range row {
			row[k] += bias[k]
		}
	}
	return y
}

// -----------------------------------------------------------------------------

func (d *Dense) Backward(dy *mat.Dense) *mat.Dense {
	var gw mat.Dense
	gw.Mul(d.input.T(), dy)
	d.Weights.Grad.Add(d.Weights.Grad, &gw)

	batch, _ := dy.Dims()
	biasGrad := d.Bias.Grad.RawRowView(0)
	for b := 0; b < batch; b++ {
		for k, v := range dy.RawRowView(b) {
			biasGrad[k] += v
		}
	}

	in, _ := d.Weights.Value.Dims()
	dx := mat.NewDense(batch, in, nil)
	dx.Mul(dy, d.Weights.Value.T())
	return dx
}

// -----------------------------------------------------------------------------

// Dropout zeroes a Rate fraction of activations during training and scales
// the survivors by 1/(1-Rate). It is the identity at inference time.
type Dropout struct {
	Rate float64

	rng   *rand.Rand
	masks []*mat.Dense
}

func NewDropout(rate float64, src rand.Source) *Dropout {
	return &Dropout{Rate: rate, rng: rand.New(src)}
}

// -----------------------------------------------------------------------------

// Forward applies dropout independently to every step in xs.
func (d *Dropout) Forward(xs []*mat.Dense, training bool) []*mat.Dense {
	if !training || d.Rate <= 0 {
		d.masks = nil
		return xs
	}

	keep := 1 - d.Rate
	out := make([]*mat.Dense, len(xs))
	d.masks = make([]*mat.Dense, len(xs))
	for t, x := range xs {
		r, c := x.Dims()
		mask := mat.NewDense(r, c, nil)
		for i := 0; i < r; i++ {
			row := mask.RawRowView(i)
			for j := range row {
				if d.rng.Float64() < keep {
					row[j] = 1 / keep
				}
			}
		}
		y := mat.NewDense(r, c, nil)
		y.MulElem(x, mask)
		out[t] = y
		d.masks[t] = mask
	}
	return out
}

// -----------------------------------------------------------------------------

func (d *Dropout) Backward(dys []*mat.Dense) []*mat.Dense {
	if d.masks == nil {
		return dys
	}

	out := make([]*mat.Dense, len(dys))
	for t, dy := range dys {
		if dy == nil {
			continue
		}
		r, c := dy.Dims()
		dx := mat.NewDense(r, c, nil)
		dx.MulElem(dy, d.masks[t])
		out[t] = dx
	}
	return out
}

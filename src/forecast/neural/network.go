package neural

import (
	"context"
	"errors"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Config sizes a SequenceModel.
type Config struct {
	InputSize    int
	Units        int
	Dropout      float64
	LearningRate float64
	Seed         uint64
}

// -----------------------------------------------------------------------------

// SequenceModel is a two-layer stacked LSTM regressor:
// LSTM(seq) -> Dropout -> LSTM(last) -> Dropout -> Dense(1).
type SequenceModel struct {
	first  *LSTM
	drop1  *Dropout
	second *LSTM
	drop2  *Dropout
	head   *Dense

	params []*Param
	opt    *Adam
	rng    *rand.Rand
}

// NewSequenceModel builds a model whose initial weights, dropout masks and
// shuffling are all derived from cfg.Seed.
func NewSequenceModel(cfg Config) *SequenceModel {
	if cfg.InputSize <= 0 {
		cfg.InputSize = 1
	}
	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)

	m := &SequenceModel{
		first:  NewLSTM("lstm_1", cfg.InputSize, cfg.Units, src),
		drop1:  NewDropout(cfg.Dropout, src),
		second: NewLSTM("lstm_2", cfg.Units, cfg.Units, src),
		drop2:  NewDropout(cfg.Dropout, src),
		head:   NewDense("dense", cfg.Units, 1, src),
		opt:    NewAdam(cfg.LearningRate),
		rng:    rand.New(src),
	}
	m.params = append(m.params, m.first.Params()...)
	m.params = append(m.params, m.second.Params()...)
	m.params = append(m.params, m.head.Params()...)
	return m
}

// -----------------------------------------------------------------------------

func (m *SequenceModel) Params() []*Param {
	return m.params
}

// -----------------------------------------------------------------------------

func (m *SequenceModel) forward(xs []*mat.Dense, training bool) *mat.Dense {
	seq := m.first.Forward(xs)
	seq = m.drop1.Forward(seq, training)
	seq = m.second.Forward(seq)
	last := m.drop2.Forward(seq[len(seq)-1:], training)
	return m.head.Forward(last[0])
}

// -----------------------------------------------------------------------------

func (m *SequenceModel) backward(dPred *mat.Dense, steps int) {
	dLast := m.head.Backward(dPred)
	dLast = m.drop2.Backward([]*mat.Dense{dLast})[0]

	dSeq := make([]*mat.Dense, steps)
	dSeq[steps-1] = dLast
	dSeq = m.second.Backward(dSeq)
	dSeq = m.drop1.Backward(dSeq)
	m.first.Backward(dSeq)
}

// -----------------------------------------------------------------------------

// Gradients clears and then accumulates the mean squared error gradient of
// the batch into every Param, returning the batch loss.
func (m *SequenceModel) Gradients(X [][]float64, y []float64, training bool) float64 {
	for _, p := range m.params {
		p.ZeroGrad()
	}

	xs := toSteps(X, m.first.InputSize)
	pred := m.forward(xs, training)

	batch := len(y)
	dPred := mat.NewDense(batch, 1, nil)
	loss := 0.0
	for b := 0; b < batch; b++ {
		diff := pred.At(b, 0) - y[b]
		loss += diff * diff
		dPred.Set(b, 0, 2*diff/float64(batch))
	}

	m.backward(dPred, len(xs))
	return loss / float64(batch)
}

// -----------------------------------------------------------------------------

// Fit trains on windows X with targets y using shuffled mini-batches and
// returns the mean loss of the final epoch.
func (m *SequenceModel) Fit(ctx context.Context, X [][]float64, y []float64, epochs, batchSize int) (float64, error) {
	if len(X) == 0 || len(X) != len(y) {
		return 0, errors.New("neural: training set is empty or misaligned")
	}
	if batchSize <= 0 {
		batchSize = 32
	}

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}

	var epochLoss float64
	for epoch := 0; epoch < epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		epochLoss = 0
		for start := 0; start < len(order); start += batchSize {
			end := min(start+batchSize, len(order))
			bx := make([][]float64, 0, end-start)
			by := make([]float64, 0, end-start)
			for _, idx := range order[start:end] {
				bx = append(bx, X[idx])
				by = append(by, y[idx])
			}

			loss := m.Gradients(bx, by, true)
			m.opt.Step(m.params)
			epochLoss += loss * float64(end-start)
		}
		epochLoss /= float64(len(order))
	}

	return epochLoss, nil
}

// -----------------------------------------------------------------------------

// Predict returns the model output for a single window.
func (m *SequenceModel) Predict(window []float64) float64 {
	pred := m.forward(toSteps([][]float64{window}, m.first.InputSize), false)
	return pred.At(0, 0)
}

// -----------------------------------------------------------------------------

// toSteps reshapes flattened windows (steps*inputSize values each) into one
// batch x inputSize matrix per time step.
func toSteps(X [][]float64, inputSize int) []*mat.Dense {
	steps := len(X[0]) / inputSize
	out := make([]*mat.Dense, steps)
	for t := 0; t < steps; t++ {
		step := mat.NewDense(len(X), inputSize, nil)
		for b, window := range X {
			copy(step.RawRowView(b), window[t*inputSize:(t+1)*inputSize])
		}
		out[t] = step
	}
	return out
}

package classify

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/mtokuda/honeysift/internal/category"
)

// Model is a trainable probabilistic text classifier over the fixed category
// set. Distribution must return a genuine probability distribution (values in
// [0,1] summing to 1) for any input, including the empty string.
type Model interface {
	Fit(commands []string, labels []category.Label) error
	Distribution(command string) map[category.Label]float64
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error
}

// MultinomialNB is a multinomial naive Bayes classifier over character n-gram
// counts with additive (Laplace) smoothing. Classes are kept sorted so that
// argmax ties resolve alphabetically.
type MultinomialNB struct {
	Alpha          float64          `json:"alpha"`
	Vec            *Vectorizer      `json:"vectorizer"`
	Classes        []category.Label `json:"classes"`
	ClassLogPrior  []float64        `json:"class_log_prior"`
	FeatureLogProb [][]float64      `json:"feature_log_prob"`
}

func NewMultinomialNB() *MultinomialNB {
	return &MultinomialNB{Alpha: 1.0, Vec: NewVectorizer()}
}

// Fit replaces all learned state with estimates from the supplied training
// pairs. This is a full refit, not an incremental update.
func (m *MultinomialNB) Fit(commands []string, labels []category.Label) error {
	if len(commands) != len(labels) {
		return fmt.Errorf("%w: %d commands, %d labels", ErrInvalidInput, len(commands), len(labels))
	}
	if len(commands) == 0 {
		return fmt.Errorf("%w: empty training set", ErrInvalidInput)
	}
	for _, l := range labels {
		if !category.Valid(l) {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, l)
		}
	}

	vec := NewVectorizer()
	vec.Fit(commands)
	nf := len(vec.Vocabulary)

	classSet := make(map[category.Label]bool, len(labels))
	for _, l := range labels {
		classSet[l] = true
	}
	classes := make([]category.Label, 0, len(classSet))
	for l := range classSet {
		classes = append(classes, l)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	classIdx := make(map[category.Label]int, len(classes))
	for i, l := range classes {
		classIdx[l] = i
	}

	docCount := make([]int, len(classes))
	featCount := make([][]float64, len(classes))
	for i := range featCount {
		featCount[i] = make([]float64, nf)
	}
	for i, cmd := range commands {
		ci := classIdx[labels[i]]
		docCount[ci]++
		for idx, n := range vec.Transform(cmd) {
			featCount[ci][idx] += float64(n)
		}
	}

	prior := make([]float64, len(classes))
	logProb := make([][]float64, len(classes))
	for ci := range classes {
		prior[ci] = math.Log(float64(docCount[ci]) / float64(len(commands)))
		total := 0.0
		for _, c := range featCount[ci] {
			total += c
		}
		denom := total + m.Alpha*float64(nf)
		logProb[ci] = make([]float64, nf)
		for f := 0; f < nf; f++ {
			logProb[ci][f] = math.Log((featCount[ci][f] + m.Alpha) / denom)
		}
	}

	m.Vec = vec
	m.Classes = classes
	m.ClassLogPrior = prior
	m.FeatureLogProb = logProb
	return nil
}

// Distribution returns the posterior probability per category for command.
// An empty or fully out-of-vocabulary command degenerates to the class
// priors. Returns nil if the model has never been fitted.
func (m *MultinomialNB) Distribution(command string) map[category.Label]float64 {
	if len(m.Classes) == 0 {
		return nil
	}
	counts := m.Vec.Transform(command)

	jll := make([]float64, len(m.Classes))
	for ci := range m.Classes {
		s := m.ClassLogPrior[ci]
		for idx, n := range counts {
			s += float64(n) * m.FeatureLogProb[ci][idx]
		}
		jll[ci] = s
	}

	// Softmax in log space with max subtraction for numeric stability.
	maxJLL := jll[0]
	for _, v := range jll[1:] {
		if v > maxJLL {
			maxJLL = v
		}
	}
	var z float64
	exp := make([]float64, len(jll))
	for i, v := range jll {
		exp[i] = math.Exp(v - maxJLL)
		z += exp[i]
	}

	out := make(map[category.Label]float64, len(m.Classes))
	for i, l := range m.Classes {
		out[l] = exp[i] / z
	}
	return out
}

func (m *MultinomialNB) MarshalBinary() ([]byte, error) {
	return json.Marshal(m)
}

func (m *MultinomialNB) UnmarshalBinary(data []byte) error {
	var decoded MultinomialNB
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Vec == nil || len(decoded.Classes) == 0 {
		return fmt.Errorf("model artifact missing learned state")
	}
	if len(decoded.ClassLogPrior) != len(decoded.Classes) || len(decoded.FeatureLogProb) != len(decoded.Classes) {
		return fmt.Errorf("model artifact class/statistic mismatch")
	}
	nf := len(decoded.Vec.Vocabulary)
	for ci, row := range decoded.FeatureLogProb {
		if len(row) != nf {
			return fmt.Errorf("model artifact feature statistics truncated: class %d has %d of %d", ci, len(row), nf)
		}
	}
	for g, idx := range decoded.Vec.Vocabulary {
		if idx < 0 || idx >= nf {
			return fmt.Errorf("model artifact vocabulary index out of range: %q -> %d", g, idx)
		}
	}
	*m = decoded
	return nil
}

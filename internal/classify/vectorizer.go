package classify

import "strings"

// Vectorizer turns a command string into character n-gram counts. Input is
// lowercased and split on runes so multi-byte characters count as one.
type Vectorizer struct {
	MinN       int            `json:"min_n"`
	MaxN       int            `json:"max_n"`
	Vocabulary map[string]int `json:"vocabulary"`
}

func NewVectorizer() *Vectorizer {
	return &Vectorizer{MinN: 1, MaxN: 3}
}

// Fit builds the vocabulary from the training commands. Feature indices are
// assigned in first-seen order.
func (v *Vectorizer) Fit(commands []string) {
	vocab := make(map[string]int)
	for _, cmd := range commands {
		for _, g := range v.ngrams(cmd) {
			if _, ok := vocab[g]; !ok {
				vocab[g] = len(vocab)
			}
		}
	}
	v.Vocabulary = vocab
}

// Transform returns sparse n-gram counts over the fitted vocabulary.
// N-grams never seen during Fit are dropped, so an arbitrary (even empty)
// command always yields a valid, possibly empty, feature vector.
func (v *Vectorizer) Transform(command string) map[int]int {
	counts := make(map[int]int)
	for _, g := range v.ngrams(command) {
		if idx, ok := v.Vocabulary[g]; ok {
			counts[idx]++
		}
	}
	return counts
}

func (v *Vectorizer) ngrams(s string) []string {
	rs := []rune(strings.ToLower(s))
	out := make([]string, 0, len(rs)*(v.MaxN-v.MinN+1))
	for n := v.MinN; n <= v.MaxN; n++ {
		for i := 0; i+n <= len(rs); i++ {
			out = append(out, string(rs[i:i+n]))
		}
	}
	return out
}

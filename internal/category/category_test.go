package category

import "testing"

func TestAllSortedAndValid(t *testing.T) {
	all := All()
	if len(all) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] >= all[i] {
			t.Fatalf("All() not sorted at %d: %q >= %q", i, all[i-1], all[i])
		}
	}
	for _, l := range all {
		if !Valid(l) {
			t.Fatalf("category %q should be valid", l)
		}
	}
	if Valid("cryptomining") {
		t.Fatal("unknown category should not validate")
	}
}

func TestSeedCorpusShape(t *testing.T) {
	corpus := SeedCorpus()
	if len(corpus) != 6 {
		t.Fatalf("expected seed examples for 6 categories, got %d", len(corpus))
	}
	for l, examples := range corpus {
		if !Valid(l) {
			t.Fatalf("seed corpus references unknown category %q", l)
		}
		if len(examples) < 9 {
			t.Fatalf("category %q has only %d seed examples", l, len(examples))
		}
	}
}

func TestSeedTrainingSetPaired(t *testing.T) {
	commands, labels := SeedTrainingSet()
	if len(commands) == 0 || len(commands) != len(labels) {
		t.Fatalf("bad training set: %d commands, %d labels", len(commands), len(labels))
	}
	for i, l := range labels {
		if !Valid(l) {
			t.Fatalf("training pair %d has unknown label %q", i, l)
		}
	}
}

package markov

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/CTAG07/Glossa/pkg/dictionary"
)

func TestNewChainInvalidOrder(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := NewChain(n); !errors.Is(err, ErrInvalidOrder) {
			t.Errorf("NewChain(%d) expected ErrInvalidOrder, got %v", n, err)
		}
	}

	c := setupTestChain(t, 1, "a", "b", "a")
	if err := c.SetOrder(0); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("SetOrder(0) expected ErrInvalidOrder, got %v", err)
	}
	if err := c.ResetTokens([]string{"x", "y", "z"}, 0); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("ResetTokens(n=0) expected ErrInvalidOrder, got %v", err)
	}
	if err := c.Reset([]string{"x y z"}, -3); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("Reset(n=-3) expected ErrInvalidOrder, got %v", err)
	}
	// A rejected rebuild leaves the chain as it was.
	if c.Order() != 1 || !c.Model().Has("a") {
		t.Error("chain changed after a rejected rebuild")
	}
}

func TestChainPredictDeterministic(t *testing.T) {
	c := setupTestChain(t, 1, "a", "b", "a", "b", "a")

	for i := 0; i < 20; i++ {
		if got := c.Predict("a"); got != "b" {
			t.Fatalf("Predict(a) = %q, want b", got)
		}
		if got := c.Predict("b"); got != "a" {
			t.Fatalf("Predict(b) = %q, want a", got)
		}
	}
}

func TestChainPredictUnknownState(t *testing.T) {
	c := setupTestChain(t, 1, "a", "b", "a", "b", "a")

	for _, s := range []State{"z", "", "a b", EndMarker} {
		if got := c.Predict(s); got != NoState {
			t.Errorf("Predict(%q) = %q, want NoState", s, got)
		}
	}

	empty := setupTestChain(t, 1, "x")
	if got := empty.Predict("x"); got != NoState {
		t.Errorf("Predict on empty model = %q, want NoState", got)
	}
}

func TestChainPredictWeighted(t *testing.T) {
	// a->b twice, a->c once.
	c := setupTestChain(t, 1, "a", "b", "a", "c", "a", "b")

	const trials = 6000
	counts := make(map[State]int)
	for i := 0; i < trials; i++ {
		counts[c.Predict("a")]++
	}
	if len(counts) != 2 {
		t.Fatalf("expected predictions only among {b, c}, got %v", counts)
	}
	ratio := float64(counts["b"]) / trials
	if math.Abs(ratio-2.0/3.0) > 0.05 {
		t.Errorf("expected b about 2/3 of the time, got %f (%v)", ratio, counts)
	}
}

func TestChainRandomState(t *testing.T) {
	c := setupTestChain(t, 1, "a", "b", "c", "d", "e", "f", "g", "h")
	states := c.Model().States()

	const trials = 7000
	counts := make(map[State]int)
	for i := 0; i < trials; i++ {
		s, probs := c.RandomState()
		if !c.Model().Has(s) {
			t.Fatalf("RandomState() returned %q which is not in the model", s)
		}
		if len(probs) == 0 {
			t.Fatalf("RandomState() returned no transitions for %q", s)
		}
		counts[s]++
	}

	expected := float64(trials) / float64(len(states))
	for _, s := range states {
		if math.Abs(float64(counts[s])-expected) > expected*0.25 {
			t.Errorf("state %q drawn %d times, expected about %.0f", s, counts[s], expected)
		}
	}
}

func TestChainRandomStateUniformIgnoresBranching(t *testing.T) {
	// "a" has three next states, "b", "c" and "d" have one each.
	c := setupTestChain(t, 1, "a", "b", "a", "c", "a", "d", "a")

	const trials = 8000
	counts := make(map[State]int)
	for i := 0; i < trials; i++ {
		s, _ := c.RandomState()
		counts[s]++
	}
	expected := float64(trials) / 4
	for s, n := range counts {
		if math.Abs(float64(n)-expected) > expected*0.2 {
			t.Errorf("state %q drawn %d times, expected about %.0f", s, n, expected)
		}
	}
}

func TestChainRandomStateEmpty(t *testing.T) {
	c := setupTestChain(t, 1, "x")
	if !c.IsEmpty() {
		t.Fatal("expected a single token with n=1 to give an empty model")
	}
	s, probs := c.RandomState()
	if s != NoState || probs != nil {
		t.Errorf("RandomState() on empty model = (%q, %v)", s, probs)
	}
	if got := c.RandomStates(3); got != nil {
		t.Errorf("RandomStates() on empty model = %q", got)
	}
}

func TestChainRandomStates(t *testing.T) {
	c := setupTestChain(t, 1, "a", "b", "c", "d", "e")

	got := c.RandomStates(3)
	if len(got) != 3 {
		t.Fatalf("expected 3 states, got %d", len(got))
	}
	seen := make(map[State]bool)
	for _, s := range got {
		if seen[s] {
			t.Errorf("state %q returned twice", s)
		}
		if !c.Model().Has(s) {
			t.Errorf("state %q not in model", s)
		}
		seen[s] = true
	}

	if got = c.RandomStates(100); len(got) != c.Model().Len() {
		t.Errorf("expected request to be clipped to %d states, got %d", c.Model().Len(), len(got))
	}
}

func TestChainRandomTransition(t *testing.T) {
	c := setupTestChain(t, 1, "a", "b", "a", "c", "a")

	for i := 0; i < 50; i++ {
		next, ok := c.RandomTransition("a")
		if !ok || (next != "b" && next != "c") {
			t.Fatalf("RandomTransition(a) = (%q, %v)", next, ok)
		}
	}
	if _, ok := c.RandomTransition("zzz"); ok {
		t.Error("expected no transition for an unknown state")
	}
}

func TestChainSetDictionary(t *testing.T) {
	d := dictionary.New()
	d.Add("Cat", "feline animal", "noun")
	d.Add("dog", "canine pet", "noun")
	d.Add(" CAT ", "small pet", "")

	c, err := NewChain(1, WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}
	if err = c.SetDictionary(d); err != nil {
		t.Fatalf("SetDictionary() error = %v", err)
	}
	if c.Dictionary() != d {
		t.Error("Dictionary() does not return the assigned dictionary")
	}

	// The merged entry contributes its definitions in encounter order.
	tokens := c.cleaner.Tokenize(d.Definitions())
	expected := []string{"feline", "animal", "small", "pet", "canine", "pet"}
	if !reflect.DeepEqual(tokens, expected) {
		t.Fatalf("combined tokens = %q, want %q", tokens, expected)
	}

	if got := c.Transitions("animal"); !reflect.DeepEqual(got, map[State]float64{"small": 1}) {
		t.Errorf("Transitions(animal) = %v", got)
	}
	if got := c.Transitions("pet"); !reflect.DeepEqual(got, map[State]float64{"canine": 1}) {
		t.Errorf("Transitions(pet) = %v", got)
	}
}

func TestChainSetDictionaryUsesCurrentOrder(t *testing.T) {
	c, _ := NewChain(1, WithSeed(1))
	if err := c.SetOrder(2); err != nil {
		t.Fatal(err)
	}
	if err := c.SetDictionary(setupTestDictionary(t)); err != nil {
		t.Fatal(err)
	}
	if c.Model().Order() != 2 {
		t.Errorf("expected model of order 2, got %d", c.Model().Order())
	}
	for _, s := range c.Model().States() {
		if len(s.Tokens()) != 2 {
			t.Errorf("state %q does not have 2 tokens", s)
		}
	}

	if err := c.SetDictionary(nil); err != nil {
		t.Fatal(err)
	}
	if !c.IsEmpty() {
		t.Error("expected empty model after assigning a nil dictionary")
	}
}

func TestChainAddWordAndRandomEntries(t *testing.T) {
	c, _ := NewChain(1, WithSeed(3))
	if got := c.RandomEntries(2); got != nil {
		t.Errorf("RandomEntries() without dictionary = %v", got)
	}

	c.AddWord(dictionary.Entry{Name: "owl", Definitions: []string{"a night bird"}})
	c.AddWord(dictionary.Entry{Name: "OWL", Definitions: []string{"a wise bird"}})
	c.AddWord(dictionary.Entry{Name: "cat", Definitions: []string{"a pet"}})

	if !c.IsEmpty() {
		t.Error("AddWord must not rebuild the model")
	}
	owl, ok := c.Dictionary().Get("owl")
	if !ok || !reflect.DeepEqual(owl.Definitions, []string{"a night bird", "a wise bird"}) {
		t.Errorf("merged entry = %+v", owl)
	}

	entries := c.RandomEntries(5)
	if len(entries) != 2 {
		t.Fatalf("expected RandomEntries to clip to 2 entries, got %d", len(entries))
	}
	if entries[0].Name == entries[1].Name {
		t.Error("RandomEntries returned the same entry twice")
	}
}

func TestChainSeedReproducible(t *testing.T) {
	tokens := []string{"a", "b", "a", "c", "b", "c", "a", "a", "b"}
	c1 := setupTestChain(t, 1, tokens...)
	c2 := setupTestChain(t, 1, tokens...)

	for i := 0; i < 50; i++ {
		s1, _ := c1.RandomState()
		s2, _ := c2.RandomState()
		if s1 != s2 {
			t.Fatalf("draw %d: RandomState differs between equally seeded chains: %q vs %q", i, s1, s2)
		}
		if p1, p2 := c1.Predict(s1), c2.Predict(s2); p1 != p2 {
			t.Fatalf("draw %d: Predict differs between equally seeded chains: %q vs %q", i, p1, p2)
		}
	}
}

func TestNewChainFromLines(t *testing.T) {
	c, err := NewChainFromLines([]string{"One fish. Two fish!"}, 1, WithSeed(5))
	if err != nil {
		t.Fatalf("NewChainFromLines() error = %v", err)
	}
	if got := c.Transitions("One"); !reflect.DeepEqual(got, map[State]float64{"fish": 1}) {
		t.Errorf("Transitions(One) = %v", got)
	}

	if _, err = NewChainFromLines(nil, 0); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("expected ErrInvalidOrder, got %v", err)
	}
}

package markov

import (
	"reflect"
	"testing"
)

func TestCleanerSentences(t *testing.T) {
	c := NewCleaner()

	testCases := []struct {
		name     string
		lines    []string
		expected []string
	}{
		{
			name:     "Split on terminal punctuation",
			lines:    []string{"Hello world. How are you?  Fine!"},
			expected: []string{"Hello world.", "How are you?", "Fine!"},
		},
		{
			name:     "Trailing fragment is dropped",
			lines:    []string{"one two. three"},
			expected: []string{"one two."},
		},
		{
			name:     "Lines without boundaries are dropped when another line has one",
			lines:    []string{"a small dog", "a cat. trailing words"},
			expected: []string{"a cat."},
		},
		{
			name:     "No boundaries returns input unchanged",
			lines:    []string{"  no punctuation here ", "nor here"},
			expected: []string{"  no punctuation here ", "nor here"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Sentences(tc.lines)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Sentences() got = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestCleanerWords(t *testing.T) {
	c := NewCleaner()
	got := c.Words([]string{"  the cat's hat-trick, 42 ", "", "end."})
	expected := []string{"the", "cat", "s", "hat", "trick", "42", "end"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Words() got = %q, want %q", got, expected)
	}
}

func TestCleanerTokenize(t *testing.T) {
	c := NewCleaner()
	got := c.Tokenize([]string{"A dog. A cat!", "no stop"})
	expected := []string{"A", "dog", "A", "cat"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Tokenize() got = %q, want %q", got, expected)
	}
}

func TestCleanerOptions(t *testing.T) {
	c := NewCleaner(WithWordRegex(`[a-z]+`), WithSentenceRegex(`[^;]*;`))
	if got := c.Sentences([]string{"ab; cd;"}); !reflect.DeepEqual(got, []string{"ab;", "cd;"}) {
		t.Errorf("Sentences() with custom regex got = %q", got)
	}
	if got := c.Words([]string{"ab 12 cd"}); !reflect.DeepEqual(got, []string{"ab", "cd"}) {
		t.Errorf("Words() with custom regex got = %q", got)
	}
}

func TestWordCount(t *testing.T) {
	testCases := []struct {
		text     string
		expected int
	}{
		{"", 0},
		{"one", 1},
		{"one two", 2},
		{"  spaced   out  ", 2},
		{"dog " + string(EndMarker), 1},
		{"it's", 2},
	}
	for _, tc := range testCases {
		if got := WordCount(tc.text); got != tc.expected {
			t.Errorf("WordCount(%q) = %d, want %d", tc.text, got, tc.expected)
		}
	}
}

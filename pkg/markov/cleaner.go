package markov

import (
	"regexp"
	"strings"
)

// Cleaner turns raw definition text into the tokens a model is built from.
// It first splits lines into sentences and then pulls word tokens out of each
// sentence. Its behavior can be customized with functional options.
type Cleaner struct {
	wordRegex     *regexp.Regexp
	sentenceRegex *regexp.Regexp
}

// CleanerOption is a function that configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithWordRegex sets the regex used to extract word tokens.
// Default: `\w+`
func WithWordRegex(wordRegex string) CleanerOption {
	return func(c *Cleaner) {
		c.wordRegex = regexp.MustCompile(wordRegex)
	}
}

// WithSentenceRegex sets the regex used to split lines into sentences.
// Default: `[^.!?]*[.!?]`
func WithSentenceRegex(sentenceRegex string) CleanerOption {
	return func(c *Cleaner) {
		c.sentenceRegex = regexp.MustCompile(sentenceRegex)
	}
}

// NewCleaner creates a new cleaner with default settings, which can be
// overridden by providing one or more CleanerOption functions.
func NewCleaner(opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		// A token is a maximal run of letters, digits or underscores.
		wordRegex: regexp.MustCompile(`\w+`),
		// A sentence is everything up to and including terminal punctuation.
		sentenceRegex: regexp.MustCompile(`[^.!?]*[.!?]`),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var defaultCleaner = NewCleaner()

// Sentences extracts every sentence ending in '.', '!' or '?' from lines.
// Text that is not followed by a sentence boundary is dropped. If no line
// contains a sentence at all, lines is returned unchanged.
func (c *Cleaner) Sentences(lines []string) []string {
	var sentences []string
	for _, line := range lines {
		for _, s := range c.sentenceRegex.FindAllString(strings.TrimSpace(line), -1) {
			sentences = append(sentences, strings.TrimSpace(s))
		}
	}
	if len(sentences) == 0 {
		return lines
	}
	return sentences
}

// Words extracts the word tokens of every line, in order.
func (c *Cleaner) Words(lines []string) []string {
	var words []string
	for _, line := range lines {
		words = append(words, c.wordRegex.FindAllString(strings.TrimSpace(line), -1)...)
	}
	return words
}

// Tokenize is Words(Sentences(lines)).
func (c *Cleaner) Tokenize(lines []string) []string {
	return c.Words(c.Sentences(lines))
}

// WordCount returns the number of word tokens in text.
func (c *Cleaner) WordCount(text string) int {
	return len(c.wordRegex.FindAllStringIndex(text, -1))
}

// WordCount counts word tokens in text using the default cleaner.
func WordCount(text string) int {
	return defaultCleaner.WordCount(text)
}

package markov

import (
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/CTAG07/Glossa/pkg/dictionary"
)

// setupTestChain creates a seeded chain of order n built from tokens.
func setupTestChain(t *testing.T, n int, tokens ...string) *Chain {
	t.Helper()
	c, err := NewChain(n, WithSeed(42))
	if err != nil {
		t.Fatalf("NewChain(%d) error = %v", n, err)
	}
	if err = c.ResetTokens(tokens, n); err != nil {
		t.Fatalf("ResetTokens() error = %v", err)
	}
	return c
}

// setupTestDictionary returns a small dictionary with merged entries.
func setupTestDictionary(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	d := dictionary.New()
	d.Add("fish", "a cold blooded animal that lives in water", "noun")
	d.Add("red", "the colour of blood", "adjective")
	d.Add("Fish ", "to try to catch fish in water", "verb")
	d.Add("blue", "the colour of the clear sky and the deep sea", "adjective")
	return d
}

var (
	benchmarkCorpus []string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() []string {
	corpusOnce.Do(func() {
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = []string{"this is a fallback corpus for benchmarking. it is not very long but will prevent a crash."}
				return
			}
			benchmarkCorpus = append(benchmarkCorpus, strings.Split(string(content), "\n")...)
		}
	})
	return benchmarkCorpus
}

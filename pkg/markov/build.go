package markov

import (
	"strings"
)

// BuildModel counts every n-gram -> next n-gram transition in tokens and
// normalizes the counts into probabilities.
//
// A window of n tokens slides over the sequence one token at a time. The
// state that follows the window at index i covers positions i+n..i+2n-1;
// positions past the end of the sequence are filled with EndMarker. A
// sequence of n tokens or fewer, or an order below 1, yields an empty model.
func BuildModel(tokens []string, n int) *Model {
	if n < 1 {
		return newEmptyModel(n)
	}

	tokens = dropEmpty(tokens)
	if len(tokens) <= n {
		return newEmptyModel(n)
	}

	counts := make(map[State]map[State]int)
	var keyBuf strings.Builder

	for i := 0; i < len(tokens)-n; i++ {
		cur := window(&keyBuf, tokens, i, n)
		next := window(&keyBuf, tokens, i+n, n)

		row, ok := counts[cur]
		if !ok {
			row = make(map[State]int)
			counts[cur] = row
		}
		row[next]++
	}

	return finalize(n, counts)
}

// window joins tokens[start:start+n], substituting EndMarker for positions
// past the end of tokens.
func window(buf *strings.Builder, tokens []string, start, n int) State {
	buf.Reset()
	for j := 0; j < n; j++ {
		if j > 0 {
			buf.WriteByte(' ')
		}
		if idx := start + j; idx < len(tokens) {
			buf.WriteString(tokens[idx])
		} else {
			buf.WriteString(string(EndMarker))
		}
	}
	return State(strings.TrimSpace(buf.String()))
}

// dropEmpty removes tokens that can not be part of a state: empty strings,
// tokens carrying whitespace and tokens containing the end-marker.
func dropEmpty(tokens []string) []string {
	clean := true
	for _, t := range tokens {
		if !validToken(t) {
			clean = false
			break
		}
	}
	if clean {
		return tokens
	}

	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if validToken(t) {
			out = append(out, t)
		}
	}
	return out
}

func validToken(t string) bool {
	return t != "" && !strings.ContainsAny(t, " \t\r\n"+string(EndMarker))
}

package lexicon

import (
	"strings"
)

// A single phrase in the lexicon, tagged with the language it belongs to and a
// small positive severity weight.
type Entry struct {
	Phrase   string `json:"phrase"`
	Language string `json:"language"`
	Severity int    `json:"severity"`
}

type trieNode struct {
	children map[rune]*trieNode
	// non-nil marks a terminal node (end of a complete phrase)
	term *Entry
}

// Index is a prefix tree over all lexicon phrases. It is built once at startup
// and read-only afterwards, so it can be shared across concurrent analyses
// without synchronization.
type Index struct {
	root *trieNode
	size int
}

// One occurrence of a lexicon phrase inside an input message. A message may
// produce many matches, including overlapping ones anchored at different start
// positions.
type Match struct {
	Term     string `json:"term"`
	Language string `json:"language"`
	Severity int    `json:"severity"`
}

func NewIndex(entries []Entry) *Index {
	idx := &Index{
		root: &trieNode{children: make(map[rune]*trieNode)},
	}
	for _, ent := range entries {
		idx.insert(ent)
	}
	return idx
}

func (idx *Index) insert(ent Entry) {
	node := idx.root
	for _, c := range strings.ToLower(ent.Phrase) {
		next, ok := node.children[c]
		if !ok {
			next = &trieNode{children: make(map[rune]*trieNode)}
			node.children[c] = next
		}
		node = next
	}
	if node.term == nil {
		idx.size++
	}
	ent.Phrase = strings.ToLower(ent.Phrase)
	node.term = &ent
}

// Number of distinct phrases in the index.
func (idx *Index) Size() int {
	return idx.size
}

// FindAll walks the trie from every start position in the lowercased text and
// records a match each time a walk crosses a terminal node. A phrase which is
// a prefix of a longer phrase matches independently of the longer one.
//
// Matching is substring-anchored, not word-boundary-anchored: a phrase fully
// contained inside a longer word still matches ("die" inside "diet"). That
// mirrors how the lexicon was originally curated; switching to word-boundary
// matching would change scoring for existing phrase lists.
//
// Worst case is O(n*m) for text length n and max phrase length m, which is
// fine for short curated phrase lists and payload-capped message bodies.
func (idx *Index) FindAll(text string) []Match {
	runes := []rune(strings.ToLower(text))
	var out []Match
	for i := range runes {
		node := idx.root
		for j := i; j < len(runes); j++ {
			next, ok := node.children[runes[j]]
			if !ok {
				break
			}
			node = next
			if node.term != nil {
				out = append(out, Match{
					Term:     string(runes[i : j+1]),
					Language: node.term.Language,
					Severity: node.term.Severity,
				})
				langMatchCount.WithLabelValues(node.term.Language).Inc()
			}
		}
	}
	return out
}

// TotalSeverity sums severity over a match list; this is the base lexicon
// score for a message.
func TotalSeverity(matches []Match) int {
	total := 0
	for _, m := range matches {
		total += m.Severity
	}
	return total
}

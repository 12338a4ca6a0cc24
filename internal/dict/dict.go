// Package dict is a fuzzy word dictionary backed by a BK-tree under edit
// distance. It answers "did you mean" style queries.
package dict

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"jbmap/internal/bktree"
	"jbmap/internal/metric"
)

// Order selects the enumeration order of Words.
type Order string

const (
	PreOrder     Order = "pre"
	PostOrder    Order = "post"
	BreadthFirst Order = "bfs"
)

// ErrUnknownOrder is returned by Words for an unrecognised Order.
var ErrUnknownOrder = errors.New("dict: unknown traversal order")

// Suggestion is a dictionary word close to a query.
type Suggestion struct {
	Word     string `json:"word"`
	Distance int    `json:"distance"`
}

// Stats summarises the shape of a Dictionary.
type Stats struct {
	Words int `json:"words"`
	Depth int `json:"depth"`
}

// Edit is one step of the script turning a query into a word.
type Edit struct {
	Op   string `json:"op"` // "equal", "insert" or "delete"
	Text string `json:"text"`
}

// Dictionary holds normalised words. It is not safe for concurrent
// mutation.
type Dictionary struct {
	tree *bktree.Tree[string, int]
}

// New builds a Dictionary from words. Words are lower-cased and trimmed;
// blanks are dropped.
func New(words ...string) (*Dictionary, error) {
	tree, err := bktree.New(metric.LevenshteinMetric)
	if err != nil {
		return nil, err
	}
	d := &Dictionary{tree: tree}
	if _, err := d.Add(words...); err != nil {
		return nil, err
	}
	return d, nil
}

// Normalize returns the form a word is stored and queried in.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// Add inserts words and returns how many were not already present.
func (d *Dictionary) Add(words ...string) (int, error) {
	added := 0
	for _, w := range words {
		w = Normalize(w)
		if w == "" {
			continue
		}
		ok, err := d.tree.Add(w)
		if err != nil {
			return added, fmt.Errorf("dict: add %q: %w", w, err)
		}
		if ok {
			added++
		}
	}
	return added, nil
}

// ReadWords reads one word per line from r, skipping blank lines and lines
// starting with '#'. Returned words are normalised.
func ReadWords(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w := Normalize(scanner.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dict: read words: %w", err)
	}
	return words, nil
}

// Load adds every word read from r and returns how many were new.
func (d *Dictionary) Load(r io.Reader) (int, error) {
	words, err := ReadWords(r)
	if err != nil {
		return 0, err
	}
	return d.Add(words...)
}

// Suggest returns the words within radius edits of query, closest first and
// alphabetical among equals.
func (d *Dictionary) Suggest(query string, radius int) ([]Suggestion, error) {
	query = Normalize(query)
	matches, err := d.tree.SearchAll(query, radius)
	if err != nil {
		return nil, err
	}
	out := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		out = append(out, Suggestion{Word: m.Value, Distance: m.Distance})
	}
	slices.SortFunc(out, func(a, b Suggestion) int {
		return cmp.Or(cmp.Compare(a.Distance, b.Distance), strings.Compare(a.Word, b.Word))
	})
	return out, nil
}

// Lookup reports whether word is in the dictionary.
func (d *Dictionary) Lookup(word string) (bool, error) {
	w := Normalize(word)
	if w == "" {
		return false, nil
	}
	return d.tree.Contains(w)
}

// Nearest returns a closest word within radius edits of word. Among equally
// close words the one reached first wins.
func (d *Dictionary) Nearest(word string, radius int) (Suggestion, bool, error) {
	m, ok, err := d.tree.Nearest(Normalize(word), radius)
	if err != nil || !ok {
		return Suggestion{}, false, err
	}
	return Suggestion{Word: m.Value, Distance: m.Distance}, true, nil
}

// Explain renders the edits from query to word for a terminal: inserted
// text is green, deleted text red.
func Explain(query, word string) string {
	dmp := diffmatchpatch.New()
	return dmp.DiffPrettyText(dmp.DiffMain(query, word, false))
}

// EditScript returns the edits from query to word.
func EditScript(query, word string) []Edit {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(query, word, false)
	edits := make([]Edit, 0, len(diffs))
	for _, d := range diffs {
		var op string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = "insert"
		case diffmatchpatch.DiffDelete:
			op = "delete"
		default:
			op = "equal"
		}
		edits = append(edits, Edit{Op: op, Text: d.Text})
	}
	return edits
}

// Words enumerates the dictionary in the given order.
func (d *Dictionary) Words(order Order) (iter.Seq[string], error) {
	switch order {
	case PreOrder, "":
		return d.tree.PreOrder(), nil
	case PostOrder:
		return d.tree.PostOrder(), nil
	case BreadthFirst:
		return d.tree.BreadthFirst(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrder, order)
	}
}

// Stats reports the word count and tree depth.
func (d *Dictionary) Stats() Stats {
	return Stats{Words: d.tree.Size(), Depth: d.tree.Depth()}
}

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"jbmap/internal/dict"
	"jbmap/internal/storage"
)

var (
	suggestRadius  int
	suggestExplain bool
	suggestJSON    bool
	dumpOrder      string
)

// errMisspelled makes `words check` exit non-zero when a word is unknown.
var errMisspelled = errors.New("some words were not found")

var errNotStored = errors.New("some words were not stored")

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Fuzzy dictionary lookup",
	Long: `Store word lists and query them by edit distance.

The dictionary is rebuilt in memory from the database on every command, in
the order words were imported.`,
}

var wordsImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import word lists (one word per line, - for stdin)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWordsImport,
}

var wordsSuggestCmd = &cobra.Command{
	Use:   "suggest <word>",
	Short: "Suggest dictionary words close to a word",
	Long: `List the stored words within --radius edits of the given word, closest
first.

Example:
  jbmap words suggest recieve
  jbmap words suggest colour --radius 1 --explain
  jbmap words suggest teh --json`,
	Args: cobra.ExactArgs(1),
	RunE: runWordsSuggest,
}

var wordsCheckCmd = &cobra.Command{
	Use:   "check <word>...",
	Short: "Check words against the dictionary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWordsCheck,
}

var wordsRemoveCmd = &cobra.Command{
	Use:   "remove <word>...",
	Short: "Remove words from the dictionary",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWordsRemove,
}

var wordsDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every word by walking the tree",
	Long: `Print every stored word by walking the tree.

Orders:
  pre   each word before the words below it
  post  words below a node first; the root word is not printed
  bfs   level by level`,
	Args: cobra.NoArgs,
	RunE: runWordsDump,
}

var wordsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dictionary size and tree depth",
	Args:  cobra.NoArgs,
	RunE:  runWordsStats,
}

func init() {
	wordsSuggestCmd.Flags().IntVarP(&suggestRadius, "radius", "r", 2, "Maximum edit distance (default from config)")
	wordsSuggestCmd.Flags().BoolVar(&suggestExplain, "explain", false, "Show the edits from the word to each suggestion")
	wordsSuggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "Output in JSON format")
	wordsDumpCmd.Flags().StringVar(&dumpOrder, "order", string(dict.PreOrder), "Traversal order: pre, post or bfs")

	wordsCmd.AddCommand(wordsImportCmd, wordsSuggestCmd, wordsCheckCmd, wordsRemoveCmd, wordsDumpCmd, wordsStatsCmd)
	rootCmd.AddCommand(wordsCmd)
}

func loadDictionary(store *storage.Storage) (*dict.Dictionary, error) {
	words, err := store.GetWords()
	if err != nil {
		return nil, err
	}
	d, err := dict.New(words...)
	if err != nil {
		return nil, fmt.Errorf("failed to build dictionary: %w", err)
	}
	logger.Debug("dictionary loaded", "words", len(words))
	return d, nil
}

func runWordsImport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	total := 0
	for _, path := range args {
		words, source, err := readWordFile(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		n, err := store.SaveWords(words, source)
		if err != nil {
			return fmt.Errorf("failed to save words from %s: %w", path, err)
		}
		logger.Info("words imported", "source", source, "read", len(words), "new", n)
		fmt.Fprintf(out, "%s: %s new words (%s read)\n", source, humanize.Comma(int64(n)), humanize.Comma(int64(len(words))))
		total += n
	}

	count, err := store.CountWords()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Imported %s words, dictionary now holds %s\n", humanize.Comma(int64(total)), humanize.Comma(int64(count)))
	return nil
}

func readWordFile(stdin io.Reader, path string) ([]string, string, error) {
	if path == "-" {
		words, err := dict.ReadWords(stdin)
		return words, "stdin", err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open word list: %w", err)
	}
	defer f.Close()

	words, err := dict.ReadWords(f)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return words, filepath.Base(path), nil
}

type suggestionOutput struct {
	dict.Suggestion
	Edits []dict.Edit `json:"edits,omitempty"`
}

func runWordsSuggest(cmd *cobra.Command, args []string) error {
	radius := cfg.Radius
	if cmd.Flags().Changed("radius") {
		radius = suggestRadius
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := loadDictionary(store)
	if err != nil {
		return err
	}

	query := dict.Normalize(args[0])
	suggestions, err := d.Suggest(query, radius)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if suggestJSON {
		results := make([]suggestionOutput, 0, len(suggestions))
		for _, s := range suggestions {
			r := suggestionOutput{Suggestion: s}
			if suggestExplain {
				r.Edits = dict.EditScript(query, s.Word)
			}
			results = append(results, r)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(suggestions) == 0 {
		fmt.Fprintf(out, "No words within %d edits of %q\n", radius, query)
		return nil
	}
	for _, s := range suggestions {
		if suggestExplain {
			fmt.Fprintf(out, "%-20s  %d  %s\n", s.Word, s.Distance, dict.Explain(query, s.Word))
		} else {
			fmt.Fprintf(out, "%-20s  %d\n", s.Word, s.Distance)
		}
	}
	return nil
}

func runWordsCheck(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := loadDictionary(store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	missing := 0
	for _, word := range args {
		ok, err := d.Lookup(word)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(out, "✓ %s\n", word)
			continue
		}

		missing++
		hint, found, err := d.Nearest(word, cfg.Radius)
		if err != nil {
			return err
		}
		if found {
			fmt.Fprintf(out, "✗ %s (did you mean %q?)\n", word, hint.Word)
		} else {
			fmt.Fprintf(out, "✗ %s\n", word)
		}
	}

	if missing > 0 {
		return fmt.Errorf("%w: %d of %d", errMisspelled, missing, len(args))
	}
	return nil
}

func runWordsRemove(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	removed := 0
	for _, arg := range args {
		word := dict.Normalize(arg)
		ok, err := store.DeleteWord(word)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(out, "✗ %s (not stored)\n", arg)
			continue
		}
		removed++
		logger.Info("word removed", "word", word)
		fmt.Fprintf(out, "- %s\n", word)
	}

	count, err := store.CountWords()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %d words, dictionary now holds %s\n", removed, humanize.Comma(int64(count)))
	if removed < len(args) {
		return fmt.Errorf("%w: %d of %d", errNotStored, len(args)-removed, len(args))
	}
	return nil
}

func runWordsDump(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := loadDictionary(store)
	if err != nil {
		return err
	}

	words, err := d.Words(dict.Order(dumpOrder))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for w := range words {
		fmt.Fprintln(out, w)
	}
	return nil
}

func runWordsStats(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	d, err := loadDictionary(store)
	if err != nil {
		return err
	}

	stats := d.Stats()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Words:    %s\n", humanize.Comma(int64(stats.Words)))
	fmt.Fprintf(out, "Depth:    %d\n", stats.Depth)
	fmt.Fprintf(out, "Database: %s\n", store.Path())
	return nil
}

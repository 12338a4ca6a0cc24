package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jbmap/internal/dict"
)

// resetFlags restores every flag to its default so commands can run more
// than once in a test binary.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type env struct {
	dir    string
	config string
	db     string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	return env{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "jbmap.db"),
	}
}

func (e env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", e.config, "--db", e.db}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e env) importWords(t *testing.T, words ...string) {
	t.Helper()
	_, err := e.run(t, strings.Join(words, "\n"), "words", "import", "-")
	require.NoError(t, err)
}

func TestWordsImport(t *testing.T) {
	e := newEnv(t)
	list := filepath.Join(e.dir, "list.txt")
	require.NoError(t, os.WriteFile(list, []byte("book\nbooks\n# comment\ncake\n"), 0644))

	out, err := e.run(t, "", "words", "import", list)
	require.NoError(t, err)
	assert.Contains(t, out, "list.txt: 3 new words")

	out, err = e.run(t, "cake\ncape\n", "words", "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "stdin: 1 new words (2 read)")
	assert.Contains(t, out, "dictionary now holds 4")
}

func TestWordsSuggest(t *testing.T) {
	e := newEnv(t)
	e.importWords(t, "book", "books", "boo", "cake", "cape", "boon", "cook")

	out, err := e.run(t, "", "words", "suggest", "bok", "--radius", "1", "--json")
	require.NoError(t, err)

	var got []dict.Suggestion
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []dict.Suggestion{{Word: "boo", Distance: 1}, {Word: "book", Distance: 1}}, got)

	out, err = e.run(t, "", "words", "suggest", "zzzzzz", "-r", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "No words within 1 edits")
}

func TestWordsSuggestRadiusFromConfig(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.config, []byte("radius: 0\n"), 0644))
	e.importWords(t, "book", "boo")

	out, err := e.run(t, "", "words", "suggest", "book", "--json")
	require.NoError(t, err)

	var got []dict.Suggestion
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []dict.Suggestion{{Word: "book", Distance: 0}}, got)
}

func TestWordsCheck(t *testing.T) {
	e := newEnv(t)
	e.importWords(t, "book", "cake")

	out, err := e.run(t, "", "words", "check", "book", "CAKE")
	require.NoError(t, err)
	assert.Equal(t, "✓ book\n✓ CAKE\n", out)

	out, err = e.run(t, "", "words", "check", "book", "bok")
	require.ErrorIs(t, err, errMisspelled)
	assert.Contains(t, out, `✗ bok (did you mean "book"?)`)
}

func TestWordsCheckHintIsClosestWord(t *testing.T) {
	e := newEnv(t)
	e.importWords(t, "bookkeeper", "books", "cake")

	// "booky" is 1 edit from "books" and 5 from "bookkeeper".
	out, err := e.run(t, "", "words", "check", "booky", "zzzzzz")
	require.ErrorIs(t, err, errMisspelled)
	assert.Contains(t, out, `✗ booky (did you mean "books"?)`)
	assert.Contains(t, out, "✗ zzzzzz\n")
}

func TestWordsRemove(t *testing.T) {
	e := newEnv(t)
	e.importWords(t, "book", "books", "boo")

	out, err := e.run(t, "", "words", "remove", "Books")
	require.NoError(t, err)
	assert.Contains(t, out, "- books\n")
	assert.Contains(t, out, "dictionary now holds 2")

	out, err = e.run(t, "", "words", "check", "books")
	require.ErrorIs(t, err, errMisspelled)
	assert.Contains(t, out, `did you mean "book"?`)

	out, err = e.run(t, "", "words", "remove", "boo", "nope")
	require.ErrorIs(t, err, errNotStored)
	assert.Contains(t, out, "- boo\n")
	assert.Contains(t, out, "✗ nope (not stored)")

	out, err = e.run(t, "", "words", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Words:    1\n")
}

func TestWordsDumpAndStats(t *testing.T) {
	e := newEnv(t)
	e.importWords(t, "book", "books", "boo")

	out, err := e.run(t, "", "words", "dump", "--order", "bfs")
	require.NoError(t, err)
	lines := strings.Fields(out)
	require.Len(t, lines, 3)
	assert.Equal(t, "book", lines[0])
	assert.ElementsMatch(t, []string{"book", "books", "boo"}, lines)

	out, err = e.run(t, "", "words", "dump", "--order", "post")
	require.NoError(t, err)
	assert.NotContains(t, strings.Fields(out), "book")

	_, err = e.run(t, "", "words", "dump", "--order", "sideways")
	assert.ErrorIs(t, err, dict.ErrUnknownOrder)

	out, err = e.run(t, "", "words", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Words:    3")
	assert.Contains(t, out, "Depth:    3")
}

func TestConfigInitAndShow(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "config", "init", "--threshold", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+e.config)

	_, err = e.run(t, "", "config", "init")
	assert.Error(t, err)

	out, err = e.run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "threshold: 4")
	assert.Contains(t, out, "timeout: 30s")
}

func TestInvalidFlags(t *testing.T) {
	e := newEnv(t)

	_, err := e.run(t, "", "--threshold", "65", "words", "stats")
	assert.Error(t, err)

	_, err = e.run(t, "", "--log-format", "xml", "words", "stats")
	assert.Error(t, err)
}

func writeTestPNG(t *testing.T, path string, invert bool) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(x * 4)
			if invert {
				v = 255 - v
			}
			img.Set(x, y, color.Gray{Y: v})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestImagesScanListClean(t *testing.T) {
	e := newEnv(t)
	photos := filepath.Join(e.dir, "photos")
	require.NoError(t, os.Mkdir(photos, 0755))
	writeTestPNG(t, filepath.Join(photos, "a.png"), false)
	writeTestPNG(t, filepath.Join(photos, "b.png"), false)

	out, err := e.run(t, "", "images", "scan", photos, "--exact", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Total images:     2")
	assert.Contains(t, out, "Duplicate groups: 1")

	out, err = e.run(t, "", "images", "list", "--json")
	require.NoError(t, err)
	var groups []struct {
		ID     int `json:"id"`
		Images []struct {
			Path string `json:"path"`
		} `json:"images"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Images, 2)

	out, err = e.run(t, "", "images", "clean", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "(Dry run - no files were modified)")

	backup := filepath.Join(e.dir, "backup")
	out, err = e.run(t, "", "images", "clean", "--move-to", backup, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Moved 1 files to "+backup)

	entries, err := os.ReadDir(backup)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, err = e.run(t, "", "images", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "2 images, 1 groups, 1 duplicates")
}

func TestImagesCleanReportsFailures(t *testing.T) {
	e := newEnv(t)
	photos := filepath.Join(e.dir, "photos")
	require.NoError(t, os.Mkdir(photos, 0755))
	writeTestPNG(t, filepath.Join(photos, "a.png"), false)
	writeTestPNG(t, filepath.Join(photos, "b.png"), false)

	_, err := e.run(t, "", "images", "scan", photos, "--exact", "--quiet")
	require.NoError(t, err)

	// A regular file where the destination folder should be.
	blocked := filepath.Join(e.dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, nil, 0644))

	out, err := e.run(t, "", "images", "clean", "--move-to", blocked, "--yes")
	require.ErrorIs(t, err, errCleanFailed)
	assert.Contains(t, out, "Moved 0 files to "+blocked)
	assert.Contains(t, out, "Failed: 1 files")

	entries, err := os.ReadDir(photos)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

package search

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termsearch/termsearch/internal/history"
	"github.com/termsearch/termsearch/internal/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init(&logger.Config{Level: "error", Output: "stderr"})
	os.Exit(m.Run())
}

// loadAggregate builds an aggregate from extended-format history lines.
func loadAggregate(t *testing.T, lines string) *history.Aggregate {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zsh_history")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0600))
	agg, err := history.Load(path, 10000)
	require.NoError(t, err)
	return agg
}

func entryByCommand(t *testing.T, agg *history.Aggregate, command string) *history.Entry {
	t.Helper()
	for _, e := range agg.Entries() {
		if e.Command == command {
			return e
		}
	}
	t.Fatalf("entry %q not found", command)
	return nil
}

func commands(candidates []Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Entry.Command
	}
	return out
}

func TestRecencyScore_MonotonicAndBounded(t *testing.T) {
	agg := loadAggregate(t, ""+
		": 100:0;oldest\n"+
		": 200:0;middle\n"+
		": 300:0;newest\n")
	scorer := NewScorer(agg, DefaultWeights())

	oldest := scorer.RecencyScore(entryByCommand(t, agg, "oldest"))
	middle := scorer.RecencyScore(entryByCommand(t, agg, "middle"))
	newest := scorer.RecencyScore(entryByCommand(t, agg, "newest"))

	assert.Equal(t, 0.0, oldest)
	assert.Equal(t, 1.0, newest)
	assert.Greater(t, newest, middle)
	assert.Greater(t, middle, oldest)
}

func TestRecencyScore_SingleTimestamp(t *testing.T) {
	agg := loadAggregate(t, ": 100:0;only\n")
	scorer := NewScorer(agg, DefaultWeights())
	assert.Equal(t, 1.0, scorer.RecencyScore(entryByCommand(t, agg, "only")))
}

func TestFrequencyScore_SubLinear(t *testing.T) {
	var lines string
	for i := 0; i < 100; i++ {
		lines += fmt.Sprintf(": %d:0;heavy\n", 100+i)
	}
	for i := 0; i < 10; i++ {
		lines += fmt.Sprintf(": %d:0;light\n", 300+i)
	}
	agg := loadAggregate(t, lines)
	scorer := NewScorer(agg, DefaultWeights())

	heavy := scorer.FrequencyScore(entryByCommand(t, agg, "heavy"))
	light := scorer.FrequencyScore(entryByCommand(t, agg, "light"))

	assert.Equal(t, 1.0, heavy)
	assert.Greater(t, heavy, light)
	// 100 occurrences must not dominate 10 occurrences linearly.
	assert.Greater(t, light, heavy/10)
	assert.LessOrEqual(t, heavy, 1.0)
	assert.Greater(t, light, 0.0)
}

func TestMatchQuality_MonotonicPositive(t *testing.T) {
	prev := matchQuality(-100)
	assert.Greater(t, prev, 0.0)
	for _, score := range []int{-10, -1, 0, 1, 10, 100} {
		q := matchQuality(score)
		assert.Greater(t, q, prev, "quality must increase with score %d", score)
		assert.Greater(t, q, 0.0)
		assert.Less(t, q, 2.0)
		prev = q
	}
}

func TestRank_EmptyQueryScenario(t *testing.T) {
	// history = [ls -la@100, ls -la@200, ls -la@300, git status@250]
	agg := loadAggregate(t, ""+
		": 100:0;ls -la\n"+
		": 200:0;ls -la\n"+
		": 250:0;git status\n"+
		": 300:0;ls -la\n")

	ranked := Rank(agg, "", DefaultWeights(), 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, []string{"ls -la", "git status"}, commands(ranked))
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.Nil(t, ranked[0].Matched)
}

func TestRank_EmptyQueryLength(t *testing.T) {
	agg := loadAggregate(t, ""+
		": 100:0;one\n"+
		": 200:0;two\n"+
		": 300:0;three\n")

	assert.Len(t, Rank(agg, "", DefaultWeights(), 10), 3)
	assert.Len(t, Rank(agg, "", DefaultWeights(), 2), 2)
}

func TestRank_SubsequenceScenario(t *testing.T) {
	agg := loadAggregate(t, ""+
		": 100:0;git status\n"+
		": 200:0;git stash\n"+
		": 300:0;ls\n")

	ranked := Rank(agg, "gst", DefaultWeights(), 10)
	got := commands(ranked)
	assert.ElementsMatch(t, []string{"git status", "git stash"}, got)
	assert.NotContains(t, got, "ls")

	for _, c := range ranked {
		assert.NotEmpty(t, c.Matched)
	}
}

func TestRank_CaseInsensitive(t *testing.T) {
	agg := loadAggregate(t, ": 100:0;Git Status\n")
	ranked := Rank(agg, "gst", DefaultWeights(), 10)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Git Status", ranked[0].Entry.Command)
}

func TestRank_NoMatchExcluded(t *testing.T) {
	agg := loadAggregate(t, ""+
		": 100:0;ls\n"+
		": 200:0;pwd\n")
	assert.Empty(t, Rank(agg, "xyz", DefaultWeights(), 10))
}

func TestRank_Deterministic(t *testing.T) {
	agg := loadAggregate(t, ""+
		": 100:0;git status\n"+
		": 150:0;git stash\n"+
		": 200:0;git push\n"+
		": 250:0;ls -la\n"+
		": 300:0;make test\n")

	for _, query := range []string{"", "g", "gst", "t"} {
		first := Rank(agg, query, DefaultWeights(), 10)
		second := Rank(agg, query, DefaultWeights(), 10)
		assert.Equal(t, commands(first), commands(second), "query %q", query)
	}
}

func TestRank_TieBreaksLexicographic(t *testing.T) {
	// Same timestamp and count: identical scores, lexicographic order wins.
	agg := loadAggregate(t, ""+
		": 100:0;zeta\n"+
		": 100:0;alpha\n")

	ranked := Rank(agg, "", DefaultWeights(), 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, []string{"alpha", "zeta"}, commands(ranked))
}

func TestRank_RecencyBreaksFuzzyTies(t *testing.T) {
	// Equal fuzzy quality for identical texts modulo one char; the newer,
	// more frequent entry must come first.
	agg := loadAggregate(t, ""+
		": 100:0;git stash\n"+
		": 200:0;git status\n"+
		": 300:0;git status\n")

	ranked := Rank(agg, "git", DefaultWeights(), 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "git status", ranked[0].Entry.Command)
}

func TestRank_WeightsShiftOrdering(t *testing.T) {
	// "frequent" is old but common, "recent" is new but rare.
	agg := loadAggregate(t, ""+
		": 100:0;frequent\n"+
		": 110:0;frequent\n"+
		": 120:0;frequent\n"+
		": 130:0;frequent\n"+
		": 300:0;recent\n")

	recencyOnly := Rank(agg, "", Weights{Recency: 1, Frequency: 0}, 10)
	assert.Equal(t, "recent", recencyOnly[0].Entry.Command)

	frequencyOnly := Rank(agg, "", Weights{Recency: 0, Frequency: 1}, 10)
	assert.Equal(t, "frequent", frequencyOnly[0].Entry.Command)
}

func TestRank_NonPositiveLimit(t *testing.T) {
	agg := loadAggregate(t, ": 100:0;ls\n")
	assert.Empty(t, Rank(agg, "", DefaultWeights(), 0))
}

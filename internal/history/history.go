// Package history reads a zsh history file and aggregates it into a
// deduplicated set of weighted command entries.
package history

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/termsearch/termsearch/internal/logger"
)

// ErrSourceUnreadable indicates that the history source itself could not be
// read. It is distinct from per-line parse failures, which are skipped.
var ErrSourceUnreadable = errors.New("history source unreadable")

// Entry is one aggregated command: the verbatim command text, the timestamp
// of its most recent occurrence and the number of occurrences seen.
//
// Timestamp is epoch seconds for lines in the extended zsh format. Plain
// lines without a timestamp receive a synthetic strictly increasing rank
// derived from their position, so recency ordering stays coherent in files
// that mix both formats.
type Entry struct {
	Command   string
	Timestamp int64
	Count     int
}

// Aggregate holds the deduplicated history with the bounds needed for
// score normalization. It is built once at startup and read-only afterwards.
type Aggregate struct {
	entries  []*Entry
	byText   map[string]*Entry
	newest   int64
	oldest   int64
	maxCount int
}

// Entries returns the aggregated entries in first-seen order.
func (a *Aggregate) Entries() []*Entry {
	return a.entries
}

// Len returns the number of distinct commands.
func (a *Aggregate) Len() int {
	return len(a.entries)
}

// Newest returns the most recent timestamp in the set.
func (a *Aggregate) Newest() int64 {
	return a.newest
}

// Oldest returns the least recent timestamp in the set.
func (a *Aggregate) Oldest() int64 {
	return a.oldest
}

// MaxCount returns the highest occurrence count in the set.
func (a *Aggregate) MaxCount() int {
	return a.maxCount
}

// ResolvePath returns the history file to read: $HISTFILE when it points at a
// regular file, otherwise ~/.zsh_history.
func ResolvePath() (string, error) {
	log := logger.GetLogger().History()

	if histfile := os.Getenv("HISTFILE"); histfile != "" {
		if info, err := os.Stat(histfile); err == nil && info.Mode().IsRegular() {
			log.Debug().Str("path", histfile).Msg("using HISTFILE environment variable")
			return histfile, nil
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: cannot determine home directory: %v", ErrSourceUnreadable, err)
	}

	defaultPath := filepath.Join(homeDir, ".zsh_history")
	if info, err := os.Stat(defaultPath); err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: history file not found at %s", ErrSourceUnreadable, defaultPath)
	}

	log.Debug().Str("path", defaultPath).Msg("using default zsh history path")
	return defaultPath, nil
}

// Load reads at most maxHistory raw lines from the end of the history file at
// path and aggregates them by exact command text. Malformed lines are skipped
// with a diagnostic; an unreadable source is fatal and reported as
// ErrSourceUnreadable.
func Load(path string, maxHistory int) (*Aggregate, error) {
	log := logger.GetLogger().History()

	if maxHistory <= 0 {
		return nil, fmt.Errorf("max history must be positive, got %d", maxHistory)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnreadable, path, err)
	}
	defer file.Close()

	// Ring of the most recent maxHistory raw lines. The bound is on raw
	// lines consumed, not on unique commands.
	ring := make([]string, 0, maxHistory)
	start := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) < maxHistory {
			ring = append(ring, scanner.Text())
		} else {
			ring[start] = scanner.Text()
			start = (start + 1) % maxHistory
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrSourceUnreadable, path, err)
	}

	// Restore file order across the wrap point.
	lines := make([]string, 0, len(ring))
	lines = append(lines, ring[start:]...)
	lines = append(lines, ring[:start]...)

	agg := &Aggregate{
		byText: make(map[string]*Entry),
	}

	// lastTS tracks the most recent timestamp seen so far, so plain lines
	// get a synthetic rank that sorts after their predecessors.
	var lastTS int64
	skipped := 0

	for _, line := range foldContinuations(lines) {
		command, ts, ok := parseLine(line, lastTS)
		if !ok {
			skipped++
			log.Debug().Str("line", line).Msg("skipping unparsable history line")
			continue
		}
		if ts > lastTS {
			lastTS = ts
		}

		if entry, exists := agg.byText[command]; exists {
			entry.Count++
			if ts > entry.Timestamp {
				entry.Timestamp = ts
			}
		} else {
			entry := &Entry{Command: command, Timestamp: ts, Count: 1}
			agg.byText[command] = entry
			agg.entries = append(agg.entries, entry)
		}
	}

	agg.finalize()

	log.Debug().
		Int("raw_lines", len(lines)).
		Int("unique_commands", agg.Len()).
		Int("skipped", skipped).
		Msg("history loaded")

	return agg, nil
}

// finalize computes the normalization bounds after aggregation.
func (a *Aggregate) finalize() {
	for i, entry := range a.entries {
		if i == 0 || entry.Timestamp > a.newest {
			a.newest = entry.Timestamp
		}
		if i == 0 || entry.Timestamp < a.oldest {
			a.oldest = entry.Timestamp
		}
		if entry.Count > a.maxCount {
			a.maxCount = entry.Count
		}
	}
}

// foldContinuations joins zsh multi-line entries: a line ending in a
// backslash continues on the next raw line.
func foldContinuations(lines []string) []string {
	folded := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		for strings.HasSuffix(line, "\\") && i+1 < len(lines) {
			i++
			line = strings.TrimSuffix(line, "\\") + "\n" + lines[i]
		}
		folded = append(folded, line)
	}
	return folded
}

// parseLine parses one logical history line in either the extended format
// `: <epoch>:<duration>;<command>` or the plain format. Plain lines receive
// the synthetic rank lastTS+1. Returns ok=false for lines that must be
// skipped (empty after trimming, malformed extended header).
func parseLine(line string, lastTS int64) (command string, ts int64, ok bool) {
	if strings.HasPrefix(line, ": ") {
		rest := line[2:]
		parts := strings.SplitN(rest, ";", 2)
		if len(parts) != 2 {
			return "", 0, false
		}

		header := strings.SplitN(parts[0], ":", 2)
		parsed, err := strconv.ParseInt(strings.TrimSpace(header[0]), 10, 64)
		if err != nil || parsed < 0 {
			return "", 0, false
		}
		ts = parsed
		command = parts[1]
	} else {
		ts = lastTS + 1
		command = line
	}

	command = strings.TrimSpace(command)
	if command == "" {
		return "", 0, false
	}
	return command, ts, true
}

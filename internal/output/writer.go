// Package output emits the final selection through the line-based handoff
// protocol the invoking shell widget reads, and provides formatted terminal
// messages for the non-interactive commands.
package output

import (
	"errors"
	"fmt"
	"os"

	"github.com/termsearch/termsearch/internal/logger"
)

// ErrUnwritable indicates the result destination could not be written. The
// caller depends on the file's existence, so this is fatal.
var ErrUnwritable = errors.New("output destination unwritable")

// CommandlineKey is the record key the shell widget looks for.
const CommandlineKey = "commandline"

// WriteResult writes the session outcome to path. A committed selection
// produces exactly one record, `commandline\t<text>\n`; a cancelled session
// produces an empty file, which the caller treats as "no selection". The
// file is created (or truncated) in both cases and flushed before return.
func WriteResult(path string, command string, accepted bool) error {
	log := logger.GetLogger().Output()

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrUnwritable, path, err)
	}
	defer file.Close()

	if accepted {
		if _, err := fmt.Fprintf(file, "%s\t%s\n", CommandlineKey, command); err != nil {
			return fmt.Errorf("%w: write %s: %v", ErrUnwritable, path, err)
		}
	}

	// The caller reads the file synchronously right after this process
	// exits, so make sure the content is on disk before returning.
	if err := file.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %v", ErrUnwritable, path, err)
	}

	log.Debug().Str("path", path).Bool("accepted", accepted).Msg("result written")
	return nil
}

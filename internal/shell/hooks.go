// Package shell installs the zsh integration: a widget script that rebinds
// Ctrl+R to run the search and splice the selection back into the edit
// buffer.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/termsearch/termsearch/internal/logger"
)

// HookManager writes the widget script and wires it into the user's zshrc.
type HookManager struct {
	binaryPath string
	logger     *logger.Logger
}

// NewHookManager creates a hook manager for the currently running binary.
func NewHookManager() (*HookManager, error) {
	binaryPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to determine binary path: %w", err)
	}

	return &HookManager{
		binaryPath: binaryPath,
		logger:     logger.GetLogger().Shell(),
	}, nil
}

// ConfigDir returns the zsh configuration directory: $ZDOTDIR when set,
// otherwise the home directory.
func ConfigDir() (string, error) {
	if dir := os.Getenv("ZDOTDIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return homeDir, nil
}

// GenerateWidget renders the zsh widget script for this binary.
func (hm *HookManager) GenerateWidget() (string, error) {
	tmpl := template.Must(template.New("zsh_widget").Parse(zshWidgetTemplate))

	var b strings.Builder
	if err := tmpl.Execute(&b, struct{ BinaryPath string }{hm.binaryPath}); err != nil {
		return "", fmt.Errorf("failed to render zsh widget template: %w", err)
	}
	return b.String(), nil
}

// Install writes the widget script into the zsh configuration directory and
// appends a source line to .zshrc when not already present. Returns the path
// of the installed script.
func (hm *HookManager) Install() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	widget, err := hm.GenerateWidget()
	if err != nil {
		return "", err
	}

	scriptPath := filepath.Join(configDir, "termsearch.zsh")
	if err := os.WriteFile(scriptPath, []byte(widget), 0644); err != nil {
		return "", fmt.Errorf("failed to write widget script %s: %w", scriptPath, err)
	}
	hm.logger.Debug().Str("path", scriptPath).Msg("widget script written")

	zshrcPath := filepath.Join(configDir, ".zshrc")
	sourceLine := fmt.Sprintf("source %s", scriptPath)
	if err := appendIfMissing(zshrcPath, sourceLine); err != nil {
		return "", err
	}
	hm.logger.Debug().Str("path", zshrcPath).Msg("source line ensured")

	return scriptPath, nil
}

// appendIfMissing appends line to the file unless an identical line is
// already present, creating the file if needed.
func appendIfMissing(path, line string) error {
	if content, err := os.ReadFile(path); err == nil {
		for _, existing := range strings.Split(string(content), "\n") {
			if strings.TrimSpace(existing) == line {
				return nil
			}
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, line); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return nil
}

// zsh widget template. The widget hands the search an output file instead of
// inheriting stdout, reads the commandline record back and splices it into
// the edit buffer.
const zshWidgetTemplate = `#!/bin/zsh
# termsearch zsh integration

termsearch-history-widget() {
    local output selected
    output=$(mktemp "${TMPDIR:-/tmp}/termsearch.XXXXXX") || return
    {{.BinaryPath}} search -o "$output" -- "$BUFFER" < /dev/tty
    if [[ $? -ne 0 ]]; then
        rm -f "$output"
        zle reset-prompt
        return
    fi
    selected=$(grep -m1 $'^commandline\t' "$output" 2>/dev/null)
    rm -f "$output"
    if [[ -n "$selected" ]]; then
        BUFFER="${selected#commandline$'\t'}"
        CURSOR=$#BUFFER
    fi
    zle reset-prompt
}

zle -N termsearch-history-widget
bindkey '^R' termsearch-history-widget
`

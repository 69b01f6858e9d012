package repl

import (
	"os"
	"path/filepath"

	"github.com/peterh/liner"
)

// HistoryFile is the name of the history file in the home directory.
const HistoryFile = ".ruscal_history"

// HistoryPath returns the history file location, or "" when the home
// directory is unknown.
func HistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, HistoryFile)
}

// OpenLiner creates a line editor with history loaded from histPath.
// The returned function saves the history and restores the terminal.
func OpenLiner(histPath string) (*liner.State, func()) {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)

	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	return ln, func() {
		if histPath != "" {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
		_ = ln.Close()
	}
}

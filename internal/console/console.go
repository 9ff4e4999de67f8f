// Package console decides whether the daemon owns a terminal and installs a
// Ctrl+C handler that keeps working while SDL holds the main OS thread.
//
// On Windows a double-clicked build runs without a console and lives in the
// tray; one started from cmd or PowerShell gets its own console window. Other
// platforms always run in the terminal they were started from.
package console

import "strings"

// isExplorer reports whether the executable path names explorer.exe.
func isExplorer(path string) bool {
	if i := strings.LastIndexAny(path, `\/`); i >= 0 {
		path = path[i+1:]
	}
	return strings.EqualFold(path, "explorer.exe")
}

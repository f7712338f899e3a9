// Package cli parses the command line into an app.Config and maps usage
// problems to an ExitError carrying the process exit code.
package cli

// Package cli turns the nnpipe command line into an app.Config. Validation
// of the values themselves is left to app.NewConfig; this package maps its
// failures, and flag parsing errors, to ExitError with exit code 2.
package cli

// Package cli is responsible for parsing command-line arguments, locating and
// loading the configuration file, and handling process-level concerns like
// exit codes. Flags given on the command line override the file.
package cli

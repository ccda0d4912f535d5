// Package cmd implements the cobra command tree for medctl: one subcommand
// per medicines API operation, plus sample fixture generation, configuration,
// version and shell completion.
//
// API commands print diagnosable failures such as a missing --id, an
// unreadable fixture, a transport error or an unexpected status, and still
// return nil so the process exits 0. Only configuration problems are returned
// as errors.
package cmd

// Package cli builds the actorgrid command tree. It validates flags, turns
// them into an app configuration and maps run outcomes to process exit
// codes through ExitError.
package cli

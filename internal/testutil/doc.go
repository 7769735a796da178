// Package testutil provides scripted stand-ins for the interactive and
// process collaborators, so flows can be tested without a terminal.
package testutil

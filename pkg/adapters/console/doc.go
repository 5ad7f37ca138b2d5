// Package console runs the storefront conversation in a terminal.
//
// Outbound actions are printed with numbered buttons; typing a number presses the button
// of the last keyboard and any other line is sent as free text.
package console

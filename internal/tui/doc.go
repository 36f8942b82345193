// Package tui renders fold trees: as plain or colored text for the show
// command, and as an interactive Bubbletea viewer that reloads when new
// dumps are written.
package tui

// Package tui is a terminal front-end for the shell. It draws the frames a
// session loop publishes with lipgloss and turns key presses into shell
// messages through bubbletea.
package tui

// Package session holds the state machines that sit between user input and
// the command boundary: editor autosave, launcher search, hotkey capture and
// settings reconciliation.
//
// Sessions run on the Bubble Tea update loop. Every method that talks to the
// boundary or the host returns a tea.Cmd; its result comes back as a message
// that the owning model passes to the session's HandleMsg method. Timers are
// tea.Tick commands tagged with a generation number, and a timer message is
// only honoured while its generation is still the live one.
package session

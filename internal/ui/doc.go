// Package ui contains the two Bubble Tea programs of tmux-prompts: the search
// popup that pastes a prompt into the pane it was opened from, and the
// full-screen library editor with its settings panel.
//
// Message flow:
//   - Bubble Tea invokes Update with incoming messages. Messages the model
//     owns (key presses, resizes, debounce timers, directory changes) are
//     routed through a typed handler registry keyed by reflect.Type.
//   - Everything else is offered to the sessions in internal/session, which
//     own all state that outlives a frame: the query and its results, the
//     draft and its save status, the settings record and hotkey capture.
//     Sessions return tea.Cmd values for slow work and ignore stale replies.
//
// The models keep only layout state (focus, cursors, viewport offsets) and
// the text widgets that mirror the active draft. They never talk to tmux or
// the prompt store directly.
//
// Harness runs commands synchronously so tests can drive either model
// end to end without a terminal.
package ui

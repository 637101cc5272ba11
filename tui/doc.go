// Package tui is a terminal search box for claims and variations.
//
// The model wraps a session.Controller: keystrokes in the text input feed
// SetQuery, and controller snapshots arrive as tea messages through a
// channel, the latest snapshot replacing older ones. The results dropdown
// is drawn below the input while the controller reports it open.
//
// Keys:
//   - esc hides the dropdown
//   - tab or enter shows it again
//   - ctrl+c quits
package tui

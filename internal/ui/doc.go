// Package ui contains the Bubble Tea program that fronts the Transmission
// daemon. The Model owns the torrent store outright: poller merges, user
// commands, and rendering all happen on the single update loop, so nothing
// in the package needs a lock.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages. An open modal
//     (prompt or confirm) traps keystrokes first; every other message falls
//     through to a typed handler registry so each tea.Msg lands in one
//     focused function.
//   - Poller events arrive as pollerEventMsg. Their snapshots merge into the
//     store and come back as a ChangeSet, which drives cache invalidation
//     and row recomputation. Because selection and marks are keyed by
//     torrent id, a merge can never move the cursor or close a modal on its
//     own.
//   - Mutations run as tea.Cmd closures against the RPC client and report
//     back as actionResultMsg. The ack only updates the status line; the
//     poll cycle it schedules is what actually changes the list.
//
// State ownership:
//   - Torrent data lives in internal/model.Store; the visible row order is
//     recomputed from it on every change.
//   - Cursor, viewport, and the marked set live in internal/ui/state.List,
//     addressed by torrent id.
//   - Prompt text entry wraps bubbles/textinput; per-category input history
//     comes from internal/history.
//
// Rendering:
//   - View is pure over the store and view state. Formatted list cells are
//     cached per torrent and dropped when a merge touches a field the list
//     shows; styling and column alignment happen per frame.
package ui

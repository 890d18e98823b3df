// Boardsync - Realtime Collaborative Board Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/boardsync

/*
Package boardstate applies board mutations to the in-memory board tree.

Optimistic local changes, confirmed REST results and remote broadcasts all go
through State.Apply, so every client that sees the same sequence of
mutations ends up with the same tree.

# Merge Rules

  - Entities are upserted by id. A mutation for an id that already exists is
    shallow-merged (fields present in the payload replace the stored ones,
    absent fields are kept). Applying the same mutation twice is a no-op the
    second time.
  - After any structural change the order fields of the affected container
    are renumbered 1..N by array position. Archived lists keep their slot
    and their order value; only the active lists are renumbered. Archived
    cards are numbered 1..M among themselves, separately from active cards.
  - Positional indexes (ws_meta destIndex) count active entities only and
    are clamped into range.
  - Checklists, checklist items, comments and attachments are found by a
    card-by-card scan that stops at the first match.
  - Labels are embedded on cards as snapshots. Label updates and deletions
    are fanned out to every card carrying that label.

A failed merge (a payload field of the wrong type, a missing parent) leaves
the tree untouched.

# Thread Safety

State is not safe for concurrent use. The livesync store owns one State and
serializes every call to it.
*/
package boardstate

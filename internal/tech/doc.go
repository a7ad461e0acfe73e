// Package tech defines the technology record model shared by every other
// package in techtrack.
//
// This package contains types, field validation and the error taxonomy only.
// All other internal packages import tech; tech imports nothing internal.
//
// Key constraints:
//   - Record JSON uses the camelCase layout the browser UI persisted
//     (id, title, description, status, notes, createdAt, deadline)
//   - Status is always one of the values in AllStatuses
//   - CreatedAt is set once at creation and never patched
package tech

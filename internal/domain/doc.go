// Package domain defines the core business types for the outreach tracker.
//
// Types in this package are pure value objects with no behavior, no storage
// dependencies, and no HTTP concerns. They are the shared language between
// the send loop, the tracking server, and the stats aggregator.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No *http.Request, no file handles, no context.Context in struct fields
//   - JSON tags are allowed (they're metadata, not behavior)
//   - Small helper methods are allowed if they're pure functions on the type
//   - Constants and enums belong here
package domain

// Package sitetests checks the generated site before publication.
//
// Native tests:
//   - size: total output size against the configured limit
//   - citations: unparsed "(Citation: ...)" markers left in HTML text
//
// links and external_links delegate to configured checker commands. Test
// failures are recorded in an Outcome rather than returned as errors so the
// build completes and the caller decides the exit status.
package sitetests

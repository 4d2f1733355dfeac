// Package core holds the table pipeline: the Record model, the CSV decoder
// and encoder, and the Service that fetches one object and decodes it.
//
// It has no HTTP or UI dependencies; the backend handlers, the API client
// and both table views all build on the types defined here.
//
// # Records
//
// A [Record] is one row of the fixed five-column schema
// (ID, Name, Email, Age, City). All fields are strings; a value missing from
// the source is "". [Columns] lists the columns in header order.
//
// # Fetch pipeline
//
//  1. [Service.FetchTable] takes a slot from the [FetchLimiter]
//  2. the configured [Source] opens the object body
//  3. an empty body fails with [ErrEmptyObject] without decoding
//  4. [Decode] maps header labels to fields and reads every row
//  5. the outcome is handed to the [FetchRecorder]
//
// Nothing is cached. Each call re-reads and re-decodes the object.
//
// # Errors
//
// Source failures are [*SourceError] values matched with errors.Is against
// [ErrNotFound], [ErrAccessDenied], [ErrTransient] and [ErrEmptyObject].
// Decode failures are [*DecodeError] and match [ErrDecode]. [MapError]
// turns any of them into a [UserMessage] with a support code.
package core

// Package content holds the typed payloads served by the schedule API and the
// pure decode functions that turn raw response bodies into them.
//
// Every decoder either returns a fully populated value or an error; a failed
// decode never yields a partially filled result. Timestamps use the API's
// "2006-01-02T15:04:05Z0700" layout through the Time wrapper.
package content

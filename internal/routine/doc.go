// Package routine defines the DailyFlow data model and its file store.
//
// An Action is one typed step (launch an app, open a URL, show a message,
// play music, delay, mute audio) whose parameters are validated against its
// kind at construction and again when loaded from disk. A Routine is an
// ordered action sequence with a name, description, optional HH:MM schedule,
// and enabled flag.
//
// The Store mirrors the in-memory collection to a single JSON document with a
// full-file atomic rewrite on every mutation, guarded by a mutex and a file
// lock so concurrent processes never lose updates. Load order equals insertion
// order and survives round-trips.
package routine

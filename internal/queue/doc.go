// Package queue persists workflow items in SQLite and exposes helpers for
// driving their lifecycle.
//
// One item tracks one source video through analysis, mission compilation, and
// variant rendering. The Store manages schema initialization, status
// transitions, stuck-item recovery after unclean shutdown, and health counts.
// The database is transient storage for in-flight jobs, not an archive;
// schema changes bump schemaVersion and users clear the database to adopt
// them.
package queue

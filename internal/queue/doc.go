// Package queue persists scan items in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, and stuck-item recovery. Queue items capture progress, the source
// duration, and — once a scan completes — the detection and keep ranges the
// manifest and transcoder consume.
//
// The database is treated as transient storage for in-flight jobs rather
// than a long-term archive. Schema changes bump the version in schema.go;
// users clear the database to adopt the new schema.
package queue

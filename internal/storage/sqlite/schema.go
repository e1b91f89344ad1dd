package sqlite

// schema is applied on every Open. Statements must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
	   id TEXT PRIMARY KEY,
	   created INTEGER NOT NULL,
	   active INTEGER NOT NULL DEFAULT 1,
	   settings TEXT NOT NULL DEFAULT ''
	 )`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_active ON sessions (active)`,
	`CREATE TABLE IF NOT EXISTS users (
	   user_id INTEGER PRIMARY KEY AUTOINCREMENT,
	   session_id TEXT NOT NULL REFERENCES sessions (id),
	   user_name TEXT NOT NULL,
	   role TEXT NOT NULL DEFAULT '',
	   joined INTEGER NOT NULL,
	   state TEXT NOT NULL,
	   UNIQUE (session_id, user_name)
	 )`,
}

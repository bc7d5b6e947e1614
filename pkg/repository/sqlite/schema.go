package sqlite

import (
	"database/sql"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS actors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  identity TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  members TEXT NOT NULL DEFAULT '',
  uid INTEGER
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_actors_identity ON actors(identity);

CREATE TABLE IF NOT EXISTS verbs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  verb_uri TEXT NOT NULL,
  display TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_verbs_uri ON verbs(verb_uri);

CREATE TABLE IF NOT EXISTS objects (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  object_uri TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  choices TEXT NOT NULL DEFAULT '',
  correct_responses_pattern TEXT NOT NULL DEFAULT '',
  content_id TEXT,
  sub_content_id TEXT,
  dedup_hash TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_objects_dedup ON objects(dedup_hash);

CREATE TABLE IF NOT EXISTS results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  response TEXT,
  score_raw REAL,
  score_scaled REAL,
  completion INTEGER NOT NULL DEFAULT 0,
  success INTEGER NOT NULL DEFAULT 0,
  duration TEXT
);

CREATE TABLE IF NOT EXISTS summaries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  actor_id INTEGER NOT NULL,
  verb_id INTEGER NOT NULL,
  object_id INTEGER NOT NULL,
  result_id INTEGER NOT NULL,
  recorded_at TEXT NOT NULL,
  raw BLOB,
  FOREIGN KEY(actor_id) REFERENCES actors(id),
  FOREIGN KEY(verb_id) REFERENCES verbs(id),
  FOREIGN KEY(object_id) REFERENCES objects(id),
  FOREIGN KEY(result_id) REFERENCES results(id)
);

CREATE INDEX IF NOT EXISTS idx_summaries_recorded_at ON summaries(recorded_at);

CREATE TABLE IF NOT EXISTS correlations (
  key TEXT PRIMARY KEY,
  result_id INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY(result_id) REFERENCES results(id)
);
`

// Migrate applies the schema. Every statement is idempotent, so running it
// on an already-migrated database is a no-op.
func Migrate(db *sql.DB) error {
	for _, raw := range strings.Split(schemaSQL, ";") {
		stmt := strings.TrimSpace(raw)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return goerr.Wrap(err, "failed to migrate schema", goerr.V("statement", stmt))
		}
	}
	return nil
}

package postgres

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS actors (
  id BIGSERIAL PRIMARY KEY,
  identity TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  members TEXT NOT NULL DEFAULT '',
  uid BIGINT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_actors_identity ON actors(identity);

CREATE TABLE IF NOT EXISTS verbs (
  id BIGSERIAL PRIMARY KEY,
  verb_uri TEXT NOT NULL,
  display TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_verbs_uri ON verbs(verb_uri);

CREATE TABLE IF NOT EXISTS objects (
  id BIGSERIAL PRIMARY KEY,
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
  id BIGSERIAL PRIMARY KEY,
  response TEXT,
  score_raw DOUBLE PRECISION,
  score_scaled DOUBLE PRECISION,
  completion BOOLEAN NOT NULL DEFAULT FALSE,
  success BOOLEAN NOT NULL DEFAULT FALSE,
  duration TEXT
);

CREATE TABLE IF NOT EXISTS summaries (
  id BIGSERIAL PRIMARY KEY,
  actor_id BIGINT NOT NULL REFERENCES actors(id),
  verb_id BIGINT NOT NULL REFERENCES verbs(id),
  object_id BIGINT NOT NULL REFERENCES objects(id),
  result_id BIGINT NOT NULL REFERENCES results(id),
  recorded_at TIMESTAMPTZ NOT NULL,
  raw BYTEA
);

CREATE INDEX IF NOT EXISTS idx_summaries_recorded_at ON summaries(recorded_at);

CREATE TABLE IF NOT EXISTS correlations (
  key TEXT PRIMARY KEY,
  result_id BIGINT NOT NULL REFERENCES results(id),
  created_at TIMESTAMPTZ NOT NULL
);
`

// Migrate applies the schema. All statements are idempotent.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return goerr.Wrap(err, "failed to migrate schema")
	}
	return nil
}

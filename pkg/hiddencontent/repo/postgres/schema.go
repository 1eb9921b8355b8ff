package postgres

// Schema creates the tables used by Repository. Metadata rows are removed
// with their page.
const Schema = `
CREATE TABLE IF NOT EXISTS pages (
	id          BIGSERIAL PRIMARY KEY,
	type        TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT '',
	author_id   BIGINT NOT NULL DEFAULT 0,
	status      TEXT NOT NULL DEFAULT 'draft',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS page_meta (
	page_id     BIGINT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
	meta_key    TEXT NOT NULL,
	meta_value  TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (page_id, meta_key)
);

CREATE INDEX IF NOT EXISTS pages_type_idx ON pages (type);
`

package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS results (
    cache_key            TEXT PRIMARY KEY,
    kind                 TEXT NOT NULL,
    payload              TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    hits                 INTEGER NOT NULL DEFAULT 0,
    last_hit_at          TEXT
);

CREATE INDEX IF NOT EXISTS idx_results_created ON results(created_at);
CREATE INDEX IF NOT EXISTS idx_results_kind ON results(kind);
`

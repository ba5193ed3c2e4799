package sqlitestore

// Schema DDL. One generic records table: the record payload is the JSON
// produced by pkg/content, and the key columns mirror types.Key so ancestor
// scans stay indexed.
const schemaSQL = `CREATE TABLE IF NOT EXISTS records (
    kind     TEXT NOT NULL,
    ancestor TEXT NOT NULL DEFAULT '',
    id       TEXT NOT NULL,
    grp      TEXT NOT NULL,
    data     TEXT NOT NULL,
    PRIMARY KEY (kind, ancestor, id)
);
CREATE INDEX IF NOT EXISTS records_by_scope ON records (kind, ancestor, id);
`

package store

const schema = `
CREATE TABLE IF NOT EXISTS usage_records (
    package TEXT PRIMARY KEY,
    last_used_at TIMESTAMP NOT NULL,
    usage_count INTEGER NOT NULL DEFAULT 0,
    foreground_ns INTEGER NOT NULL DEFAULT 0,
    cooldown_expires_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS foreground_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    package TEXT NOT NULL,
    event_type TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fg_events_package ON foreground_events(package);
CREATE INDEX IF NOT EXISTS idx_fg_events_timestamp ON foreground_events(timestamp);
`

package storage

const schema = `
-- The 'sources' table tracks where event decks come from: a local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    type TEXT NOT NULL DEFAULT 'local', -- 'local' or 'git'
    path TEXT NOT NULL UNIQUE,
    last_scanned DATETIME
);

-- The 'events' table is the event pool games are dealt from.
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    difficulty INTEGER NOT NULL,
    date_occurred TEXT NOT NULL,
    source_id INTEGER,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);

CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);

-- The 'sessions' table stores each game session in its JSON form.
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    data TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);

-- The 'ai_memory' table keeps what each named opponent has learned, one row per bucket.
-- position preserves recency order so the least recently used bucket is evicted first after a reload.
CREATE TABLE IF NOT EXISTS ai_memory (
    opponent TEXT NOT NULL,
    category TEXT NOT NULL,
    decade INTEGER NOT NULL,
    difficulty INTEGER NOT NULL,
    attempts INTEGER NOT NULL,
    successes INTEGER NOT NULL,
    accuracy REAL NOT NULL,
    position INTEGER NOT NULL,

    PRIMARY KEY(opponent, category, decade, difficulty)
);

-- The 'game_results' table records finished games.
CREATE TABLE IF NOT EXISTS game_results (
    session_id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    score INTEGER NOT NULL,
    ai_score INTEGER NOT NULL,
    opponent TEXT NOT NULL,
    difficulty TEXT NOT NULL DEFAULT '',
    finished_at DATETIME NOT NULL
);
`

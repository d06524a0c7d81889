package storage

const schema = `
-- The 'collections' table groups cards. Cards keep only a weak reference.
CREATE TABLE IF NOT EXISTS collections (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);

-- The 'cards' table stores each flashcard and its scheduling state.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    original_text TEXT NOT NULL,
    translated_text TEXT NOT NULL,
    tag TEXT NOT NULL DEFAULT 'Other',
    collection_id INTEGER,
    fingerprint TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    review_count INTEGER NOT NULL DEFAULT 0,
    ease_factor REAL NOT NULL DEFAULT 2.5,
    interval_days INTEGER NOT NULL DEFAULT 0,
    last_reviewed DATETIME,
    next_review DATETIME,

    FOREIGN KEY(collection_id) REFERENCES collections(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_cards_collection ON cards(collection_id);
CREATE INDEX IF NOT EXISTS idx_cards_fingerprint ON cards(fingerprint);

-- The 'review_logs' table keeps one row per completed review.
CREATE TABLE IF NOT EXISTS review_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    card_id TEXT NOT NULL,
    reviewed_at DATETIME NOT NULL,
    correct INTEGER NOT NULL,
    interval_days INTEGER NOT NULL,
    ease_factor REAL NOT NULL,

    FOREIGN KEY(card_id) REFERENCES cards(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_review_logs_card ON review_logs(card_id);

-- The 'grammar_concepts' table stores grammar notes. They are never scheduled.
CREATE TABLE IF NOT EXISTS grammar_concepts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    collection_id INTEGER,
    created_at DATETIME NOT NULL,

    FOREIGN KEY(collection_id) REFERENCES collections(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_grammar_collection ON grammar_concepts(collection_id);
`

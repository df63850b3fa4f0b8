package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	status TEXT NOT NULL,
	entry_time DATETIME NOT NULL,
	exit_time DATETIME,
	entry_date TEXT NOT NULL,
	exit_date TEXT NOT NULL DEFAULT '',
	entry_price REAL NOT NULL,
	exit_price REAL,
	quantity REAL NOT NULL,
	realized_pnl REAL NOT NULL,
	commission REAL NOT NULL,
	outcome TEXT NOT NULL,
	legs TEXT NOT NULL,
	initial_stop REAL,
	inferred_stop REAL,
	pending_exit REAL,
	risk_pct_at_entry REAL,
	equity_at_entry REAL
);

CREATE INDEX IF NOT EXISTS idx_trades_exit_date ON trades(exit_date);
CREATE INDEX IF NOT EXISTS idx_trades_entry_time ON trades(entry_time);

CREATE TABLE IF NOT EXISTS daily (
	date TEXT PRIMARY KEY,
	pnl REAL NOT NULL,
	equity REAL NOT NULL,
	peak REAL NOT NULL,
	drawdown_pct REAL NOT NULL,
	trades INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	losses INTEGER NOT NULL,
	breakevens INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS import_runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	source TEXT NOT NULL,
	fills INTEGER NOT NULL,
	trades INTEGER NOT NULL,
	closed INTEGER NOT NULL,
	warnings INTEGER NOT NULL,
	mode TEXT NOT NULL,
	risk_pct REAL NOT NULL,
	equity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_import_runs_created ON import_runs(created);
`

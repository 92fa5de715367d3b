package sqlstore

type migration struct {
	version int
	sql     string
}

// migrations must stay append-only; versions are sequential from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS profiles (
	id                      TEXT PRIMARY KEY,
	full_name               TEXT NOT NULL DEFAULT '',
	email                   TEXT NOT NULL,
	avatar_url              TEXT NOT NULL DEFAULT '',
	email_notifications     INTEGER NOT NULL DEFAULT 1,
	notify_on_assignment    INTEGER NOT NULL DEFAULT 1,
	notify_on_comments      INTEGER NOT NULL DEFAULT 1,
	notify_on_status_change INTEGER NOT NULL DEFAULT 1,
	created_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	notes         TEXT NOT NULL DEFAULT '',
	priority      TEXT NOT NULL DEFAULT 'normal',
	status        TEXT NOT NULL DEFAULT 'not_started',
	time_estimate TEXT NOT NULL DEFAULT '',
	start_date    DATETIME,
	due_date      DATETIME,
	assigned_to   TEXT NOT NULL DEFAULT '',
	created_by    TEXT NOT NULL,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_created_at ON tasks(created_at);
`,
	},
}

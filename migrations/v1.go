package migrations

import (
	"database/sql"

	log "github.com/sirupsen/logrus"

	"github.com/keccers/apod-frame/db"
)

// Reads the schema version recorded in the migrations table
func schemaVersion() (int, error) {
	DB := db.GetDB()

	_, err := DB.Exec(`CREATE TABLE IF NOT EXISTS migrations (version integer not null)`)
	if err != nil {
		return 0, err
	}

	res := &struct {
		Version int `db:"version"`
	}{}
	err = DB.Get(res, "SELECT version FROM migrations WHERE ROWID = 0")
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return res.Version, nil
}

func V1() error {
	version, err := schemaVersion()
	if err != nil {
		return err
	}
	if version >= 1 {
		return nil
	}

	log.Info("Migrating database to version 1")
	sqlStmt := `
CREATE TABLE IF NOT EXISTS entries (
	id integer primary key autoincrement,
	title text not null,
	link text not null,
	content text not null,
	date text not null,
	media text not null default '',
	share_image text
);
CREATE UNIQUE INDEX IF NOT EXISTS entries_link ON entries (link);
CREATE TABLE IF NOT EXISTS subscribers (
	id integer primary key autoincrement,
	fid integer not null,
	username text not null default '',
	notification_token text,
	notification_url text
);
CREATE UNIQUE INDEX IF NOT EXISTS subscribers_fid ON subscribers (fid);
CREATE INDEX IF NOT EXISTS subscribers_notification_token ON subscribers (notification_token);
INSERT OR REPLACE INTO migrations (ROWID, version) VALUES (0, 1);
`

	_, err = db.GetDB().Exec(sqlStmt)
	if err != nil {
		log.Error("Query error", err)
		return err
	}
	return nil
}

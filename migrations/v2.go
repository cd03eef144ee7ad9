package migrations

import (
	log "github.com/sirupsen/logrus"

	"github.com/keccers/apod-frame/db"
)

func V2() error {
	version, err := schemaVersion()
	if err != nil {
		return err
	}
	if version >= 2 {
		return nil
	}

	log.Info("Migrating database to version 2")
	sqlStmt := `
ALTER TABLE entries ADD COLUMN share_image_edit text;
ALTER TABLE subscribers ADD COLUMN first_time integer not null default 1;
CREATE TABLE IF NOT EXISTS deliveries (
	id integer primary key autoincrement,
	entry_id integer not null references entries (id),
	sent_at timestamp not null
);
CREATE UNIQUE INDEX IF NOT EXISTS deliveries_entry_id ON deliveries (entry_id);
INSERT OR REPLACE INTO migrations (ROWID, version) VALUES (0, 2);
`

	_, err = db.GetDB().Exec(sqlStmt)
	if err != nil {
		log.Error("Query error", err)
		return err
	}
	return nil
}

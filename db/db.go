package db

import (
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"

	"github.com/keccers/apod-frame/utils"
)

var (
	db *sqlx.DB
)

func GetDB() *sqlx.DB {
	return db
}

func ConnectDB() *sqlx.DB {
	// Check if the path is set
	dbPath := viper.GetString("db_path")
	if dbPath == "" {
		panic("Database path is empty")
	}

	// Ensure the folder exists
	dbPath, err := filepath.Abs(dbPath)
	if err != nil {
		panic(fmt.Sprintln("Invalid database path", err))
	}
	dbDir := filepath.Dir(dbPath)
	err = utils.EnsureFolder(dbDir)
	if err != nil {
		panic(fmt.Sprintln("Could not create the folder for the database", err))
	}

	// Init the singleton
	// Foreign keys are enforced so deliveries can't outlive their entry
	db, err = sqlx.Open("sqlite3", "file:"+dbPath+"?cache=shared&_foreign_keys=1")
	if err != nil {
		panic(err)
	}

	return db
}

// ConnectTestDB opens an in-memory database, for use in tests only
func ConnectTestDB() *sqlx.DB {
	var err error
	db, err = sqlx.Open("sqlite3", "file::memory:?cache=shared&_foreign_keys=1")
	if err != nil {
		panic(err)
	}
	// Keep a single connection so the in-memory database isn't dropped
	// between queries
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db
}

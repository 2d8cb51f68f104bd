package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func Open(url string) (db *sql.DB, err error) {
	// the pragma must hold on every pooled connection, so it goes in the DSN
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	db, err = sql.Open("sqlite3", url+sep+"_foreign_keys=on")
	if err != nil {
		return
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return
	}

	return
}

package main

import (
	"database/sql"
	"os"

	"github.com/spf13/cobra"

	"github.com/geosurvey/geosurvey/database"
	"github.com/geosurvey/geosurvey/log"
)

var (
	dbUrl string
	debug bool
)

func main() {
	root := &cobra.Command{
		Use:           "geosurvey",
		Short:         "geo-enabled survey platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbUrl, "db-url", "geosurvey.sqlite", "path to SQLite3 DB file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "log at DEBUG level")

	root.AddCommand(serveCmd(), exportCmd(), importCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func openDB() (*sql.DB, error) {
	if debug {
		log.SetLevel(log.DebugLevel)
	}
	return database.Open(dbUrl)
}

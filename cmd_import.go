package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/geosurvey/geosurvey/archive"
	"github.com/geosurvey/geosurvey/log"
	"github.com/geosurvey/geosurvey/store"
)

func importCmd() *cobra.Command {
	var organization string
	var createdBy string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a survey archive",
		Long:  `Import a survey archive from a zip file, or from standard input with "-". Warnings about skipped or adjusted records go to standard error.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			st := store.New(db)

			var in io.Reader = os.Stdin
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			opts := archive.ImportOptions{CreatedBy: createdBy}
			opts.Organization, err = lookupOrganization(cmd, st, organization)
			if err != nil {
				return err
			}

			importer := archive.Importer{Store: st, Codes: st}
			survey, warnings, err := importer.Import(cmd.Context(), in, opts)
			for _, warning := range warnings {
				log.Warn(warning)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported survey %q (%s)\n", survey.Name, survey.UUID)
			return nil
		},
	}
	cmd.Flags().StringVar(&organization, "organization", "", "attach the imported survey to this organization, overriding the archive")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "record this user as the survey's creator")
	return cmd
}

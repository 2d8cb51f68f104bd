package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geosurvey/geosurvey/archive"
	"github.com/geosurvey/geosurvey/model"
	"github.com/geosurvey/geosurvey/store"
)

func exportCmd() *cobra.Command {
	var mode string
	var output string

	cmd := &cobra.Command{
		Use:   "export <survey>",
		Short: "Export a survey to a zip archive",
		Long:  "Export a survey, given its name or UUID, to a zip archive on a file or standard output.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			st := store.New(db)

			ctx := cmd.Context()
			survey, err := st.SurveyByName(ctx, args[0])
			if err != nil {
				return err
			}
			if survey == nil {
				survey, err = st.SurveyByUUID(ctx, args[0])
				if err != nil {
					return err
				}
			}
			if survey == nil {
				return fmt.Errorf("survey %q not found", args[0])
			}

			out := os.Stdout
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			exporter := archive.Exporter{Store: st}
			return exporter.Export(ctx, out, survey, archive.Mode(mode))
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(archive.ModeStructure), "export mode: structure, data or full")
	cmd.Flags().StringVarP(&output, "output", "o", "-", `output file ("-" for standard output)`)
	return cmd
}

func lookupOrganization(cmd *cobra.Command, st *store.Store, name string) (*model.Organization, error) {
	if name == "" {
		return nil, nil
	}
	org, err := st.OrganizationByName(cmd.Context(), name)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, fmt.Errorf("organization %q not found", name)
	}
	return org, nil
}

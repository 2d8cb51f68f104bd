package routes

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
	"github.com/go-chi/render"

	"github.com/geosurvey/geosurvey/app"
	"github.com/geosurvey/geosurvey/archive"
	"github.com/geosurvey/geosurvey/httpx"
	"github.com/geosurvey/geosurvey/log"
)

func ExportSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		survey, err := app.SurveyByID(r.Context(), surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}
		if survey == nil {
			httpx.LogNotFound(w, "export_survey", surveyId)
			return
		}

		// buffer the whole archive so a late failure does not leave the
		// client with a truncated download
		buf := &bytes.Buffer{}
		exporter := archive.Exporter{Store: app.Store}
		err = exporter.Export(r.Context(), buf, survey, archive.Mode(r.URL.Query().Get("mode")))
		var exportErr *archive.ExportError
		if errors.As(err, &exportErr) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "export_survey", "%s", exportErr.Message)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "export_survey", err)
			return
		}

		w.Header().Set("content-type", "application/zip")
		w.Header().Set("content-disposition", fmt.Sprintf("attachment; filename=%q", survey.Name+".zip"))
		w.Write(buf.Bytes())
	}
}

func ImportSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := archive.ImportOptions{}
		if orgName := r.URL.Query().Get("organization"); orgName != "" {
			org, err := app.OrganizationByName(r.Context(), orgName)
			if err != nil {
				httpx.LogInternalError(w, "db.get_organization", err)
				return
			}
			if org == nil {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "import_survey", "unknown organization %q", orgName)
				return
			}
			opts.Organization = org
		}
		if credential, ok := r.Context().Value(oauth.CredentialContext).(string); ok {
			opts.CreatedBy = credential
		}

		importer := archive.Importer{Store: app.Store, Codes: app.Store}
		survey, warnings, err := importer.Import(r.Context(), r.Body, opts)
		var importErr *archive.ImportError
		if errors.As(err, &importErr) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "import_survey", "%s", importErr.Message)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "import_survey", err)
			return
		}

		// warnings describe skipped or adjusted records; they go to the
		// caller and the server log, never silently away
		httpx.LogWarnings("import_survey", warnings)
		if warnings == nil {
			warnings = []string{}
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"survey":   survey,
			"warnings": warnings,
		})
	}
}

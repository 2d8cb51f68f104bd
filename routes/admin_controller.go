package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/geosurvey/geosurvey/app"
	"github.com/geosurvey/geosurvey/httpx"
	"github.com/geosurvey/geosurvey/log"
	"github.com/geosurvey/geosurvey/model"
)

type surveyTree struct {
	model.Survey
	Organization *model.Organization `json:"organization,omitempty"`
	Sections     []sectionTree       `json:"sections"`
}

type sectionTree struct {
	model.Section
	Questions []*model.Question `json:"questions"`
}

func loadSurveyTree(r *http.Request, app app.App, survey *model.Survey) (*surveyTree, error) {
	tree := &surveyTree{Survey: *survey, Sections: []sectionTree{}}

	if survey.OrganizationID != nil {
		org, err := app.OrganizationByID(r.Context(), *survey.OrganizationID)
		if err != nil {
			return nil, err
		}
		tree.Organization = org
	}

	sections, err := app.SectionsBySurvey(r.Context(), survey.ID)
	if err != nil {
		return nil, err
	}
	for _, sec := range sections {
		questions, err := app.QuestionsBySection(r.Context(), sec.ID)
		if err != nil {
			return nil, err
		}
		if questions == nil {
			questions = []*model.Question{}
		}
		tree.Sections = append(tree.Sections, sectionTree{Section: *sec, Questions: questions})
	}
	return tree, nil
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.ListSurveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func GetSurveyById(app app.App) http.HandlerFunc {
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
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}

		tree, err := loadSurveyTree(r, app, survey)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey.tree", err)
			return
		}

		render.JSON(w, r, tree)
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		found, err := app.Store.DeleteSurvey(r.Context(), surveyId)
		if err != nil {
			httpx.LogInternalError(w, "db.delete_survey", err)
			return
		}
		if !found {
			httpx.LogNotFound(w, "delete_survey", surveyId)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/geosurvey/geosurvey/app"
	"github.com/geosurvey/geosurvey/archive"
	"github.com/geosurvey/geosurvey/geometry"
	"github.com/geosurvey/geosurvey/httpx"
	"github.com/geosurvey/geosurvey/log"
	"github.com/geosurvey/geosurvey/model"
)

func PublicGetSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uuid := chi.URLParam(r, "uuid")

		survey, err := app.SurveyByUUID(r.Context(), uuid)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}
		if survey == nil || survey.Archived || survey.Visibility == model.VisibilityPrivate {
			httpx.LogNotFound(w, "get_survey", uuid)
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

type sessionRequest struct {
	Language  string          `json:"language,omitempty"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
	Answers   []answerRequest `json:"answers"`
}

type answerRequest struct {
	QuestionCode string          `json:"question_code"`
	Text         *string         `json:"text,omitempty"`
	Numeric      *float64        `json:"numeric,omitempty"`
	YN           *bool           `json:"yn,omitempty"`
	Geometry     string          `json:"geometry,omitempty"`
	Choices      []int           `json:"choices,omitempty"`
	SubAnswers   []answerRequest `json:"sub_answers,omitempty"`
}

func PublicSubmitSession(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uuid := chi.URLParam(r, "uuid")

		survey, err := app.SurveyByUUID(r.Context(), uuid)
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}
		if survey == nil || survey.Archived {
			httpx.LogNotFound(w, "get_survey", uuid)
			return
		}

		req := sessionRequest{}
		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.StartedAt.IsZero() {
			req.StartedAt = time.Now()
		}

		session := &model.Session{
			SurveyID:  survey.ID,
			StartedAt: req.StartedAt,
			EndedAt:   req.EndedAt,
			Language:  req.Language,
		}

		var badRequest string
		err = app.InTransaction(r.Context(), func(tx archive.Store) error {
			if err := tx.CreateSession(r.Context(), session); err != nil {
				return err
			}
			for _, a := range req.Answers {
				msg, err := submitAnswer(r, tx, survey, session, nil, a)
				if err != nil {
					return err
				}
				if msg != "" {
					badRequest = msg
					return errAbortSubmission
				}
			}
			return nil
		})
		if badRequest != "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "submit_session", "%s", badRequest)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.insert_session", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": session.ID,
		})
	}
}

// errAbortSubmission rolls the submission transaction back when the payload
// itself is at fault; the handler answers 400 instead of 500.
var errAbortSubmission = &badSubmissionError{}

type badSubmissionError struct{}

func (*badSubmissionError) Error() string { return "bad submission" }

func submitAnswer(r *http.Request, tx archive.Store, survey *model.Survey, session *model.Session, parent *model.Answer, req answerRequest) (string, error) {
	question, err := tx.QuestionByCode(r.Context(), survey.ID, req.QuestionCode)
	if err != nil {
		return "", err
	}
	if question == nil {
		return "unknown question code " + req.QuestionCode, nil
	}

	answer := &model.Answer{
		SessionID:  session.ID,
		QuestionID: question.ID,
		Text:       req.Text,
		Numeric:    req.Numeric,
		YN:         req.YN,
	}
	if parent != nil {
		answer.ParentAnswerID = &parent.ID
	}
	if req.Geometry != "" {
		g, err := geometry.Decode(req.Geometry)
		if err != nil {
			return "invalid geometry for question " + question.Code, nil
		}
		answer.Geometry = g
	}
	for _, code := range req.Choices {
		known := false
		for _, c := range question.Choices {
			if c.Code == code {
				known = true
				break
			}
		}
		if !known {
			return "unknown choice for question " + question.Code, nil
		}
		answer.SelectedChoices = append(answer.SelectedChoices, code)
	}

	if err := tx.CreateAnswer(r.Context(), answer); err != nil {
		return "", err
	}
	for _, sub := range req.SubAnswers {
		msg, err := submitAnswer(r, tx, survey, session, answer, sub)
		if msg != "" || err != nil {
			return msg, err
		}
	}
	return "", nil
}

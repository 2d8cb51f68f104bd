package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/geosurvey/geosurvey/geometry"
	"github.com/geosurvey/geosurvey/model"
)

func (s *Store) SessionsBySurvey(ctx context.Context, surveyID int64) ([]*model.Session, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, survey_id, started_at, ended_at, language
		FROM session
		WHERE survey_id = ?
		ORDER BY id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get sessions")
	}
	defer rows.Close()

	sessions := []*model.Session{}
	for rows.Next() {
		sess := model.Session{}
		var ended sql.NullTime
		var language sql.NullString
		if err := rows.Scan(&sess.ID, &sess.SurveyID, &sess.StartedAt, &ended, &language); err != nil {
			return nil, errors.Wrap(err, "get sessions.scan")
		}
		if ended.Valid {
			sess.EndedAt = &ended.Time
		}
		sess.Language = language.String
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

func (s *Store) CreateSession(ctx context.Context, session *model.Session) error {
	var ended sql.NullTime
	if session.EndedAt != nil {
		ended = sql.NullTime{Time: *session.EndedAt, Valid: true}
	}
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO session (survey_id, started_at, ended_at, language)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		session.SurveyID,
		session.StartedAt,
		ended,
		nullString(session.Language),
	).Scan(&session.ID)
	return errors.Wrap(err, "insert session")
}

func (s *Store) AnswersBySession(ctx context.Context, sessionID int64) ([]*model.Answer, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, session_id, question_id, parent_answer_id, numeric_value, text_value, yn, geometry, selected_choices
		FROM answer
		WHERE session_id = ?
		ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get answers")
	}
	defer rows.Close()

	answers := []*model.Answer{}
	for rows.Next() {
		a := model.Answer{}
		var parent sql.NullInt64
		var numeric sql.NullFloat64
		var text, geom, choices sql.NullString
		var yn sql.NullBool
		err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &parent, &numeric, &text, &yn, &geom, &choices)
		if err != nil {
			return nil, errors.Wrap(err, "get answers.scan")
		}
		a.ParentAnswerID = int64Ptr(parent)
		if numeric.Valid {
			a.Numeric = &numeric.Float64
		}
		if text.Valid {
			a.Text = &text.String
		}
		if yn.Valid {
			a.YN = &yn.Bool
		}
		if geom.Valid {
			g, err := geometry.Decode(geom.String)
			if err != nil {
				return nil, errors.Wrap(err, "get answers.geometry")
			}
			a.Geometry = g
		}
		if err := unmarshalColumn(choices, &a.SelectedChoices); err != nil {
			return nil, err
		}
		answers = append(answers, &a)
	}
	return answers, rows.Err()
}

func (s *Store) CreateAnswer(ctx context.Context, answer *model.Answer) error {
	var geom sql.NullString
	if answer.Geometry != nil {
		wkt, err := geometry.Encode(answer.Geometry)
		if err != nil {
			return errors.Wrap(err, "insert answer.geometry")
		}
		geom = nullString(wkt)
	}
	choices, err := marshalColumn(answer.SelectedChoices)
	if err != nil {
		return err
	}

	var numeric sql.NullFloat64
	if answer.Numeric != nil {
		numeric = sql.NullFloat64{Float64: *answer.Numeric, Valid: true}
	}
	var text sql.NullString
	if answer.Text != nil {
		text = sql.NullString{String: *answer.Text, Valid: true}
	}
	var yn sql.NullBool
	if answer.YN != nil {
		yn = sql.NullBool{Bool: *answer.YN, Valid: true}
	}

	err = s.q.QueryRowContext(ctx, `
		INSERT INTO answer (session_id, question_id, parent_answer_id, numeric_value, text_value, yn, geometry, selected_choices)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		answer.SessionID,
		answer.QuestionID,
		nullInt64(answer.ParentAnswerID),
		numeric,
		text,
		yn,
		geom,
		choices,
	).Scan(&answer.ID)
	return errors.Wrap(err, "insert answer")
}

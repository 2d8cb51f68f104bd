package store

import (
	"context"
	"database/sql"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/geosurvey/geosurvey/model"
)

func (s *Store) OrganizationByName(ctx context.Context, name string) (*model.Organization, error) {
	return s.organization(ctx, `SELECT id, name, slug FROM organization WHERE name = ?`, name)
}

func (s *Store) OrganizationByID(ctx context.Context, id int64) (*model.Organization, error) {
	return s.organization(ctx, `SELECT id, name, slug FROM organization WHERE id = ?`, id)
}

func (s *Store) organization(ctx context.Context, query string, arg any) (*model.Organization, error) {
	org := model.Organization{}
	err := s.q.QueryRowContext(ctx, query, arg).Scan(&org.ID, &org.Name, &org.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get organization")
	}
	return &org, nil
}

func (s *Store) CreateOrganization(ctx context.Context, org *model.Organization) error {
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO organization (name, slug) VALUES (?, ?)
		RETURNING id`,
		org.Name,
		org.Slug,
	).Scan(&org.ID)
	return errors.Wrap(err, "insert organization")
}

const surveyColumns = `
	s.id, s.uuid, s.name, s.organization_id, s.redirect_url,
	s.available_languages, s.visibility, s.archived, s.thanks_html, s.created_by`

func (s *Store) SurveyByName(ctx context.Context, name string) (*model.Survey, error) {
	return s.survey(ctx, `SELECT `+surveyColumns+` FROM survey s WHERE s.name = ?`, name)
}

func (s *Store) SurveyByUUID(ctx context.Context, id string) (*model.Survey, error) {
	return s.survey(ctx, `SELECT `+surveyColumns+` FROM survey s WHERE s.uuid = ?`, id)
}

func (s *Store) SurveyByID(ctx context.Context, id int64) (*model.Survey, error) {
	return s.survey(ctx, `SELECT `+surveyColumns+` FROM survey s WHERE s.id = ?`, id)
}

func (s *Store) survey(ctx context.Context, query string, arg any) (*model.Survey, error) {
	row := s.q.QueryRowContext(ctx, query, arg)
	survey, err := scanSurvey(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get survey")
	}
	return survey, nil
}

func (s *Store) ListSurveys(ctx context.Context) ([]*model.Survey, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+surveyColumns+` FROM survey s ORDER BY s.name`)
	if err != nil {
		return nil, errors.Wrap(err, "get surveys")
	}
	defer rows.Close()

	surveys := []*model.Survey{}
	for rows.Next() {
		survey, err := scanSurvey(rows.Scan)
		if err != nil {
			return nil, errors.Wrap(err, "get surveys")
		}
		surveys = append(surveys, survey)
	}
	return surveys, rows.Err()
}

func scanSurvey(scan func(...any) error) (*model.Survey, error) {
	survey := model.Survey{}
	var orgID sql.NullInt64
	var redirect, languages, thanks, createdBy sql.NullString
	err := scan(
		&survey.ID, &survey.UUID, &survey.Name, &orgID, &redirect,
		&languages, &survey.Visibility, &survey.Archived, &thanks, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	survey.OrganizationID = int64Ptr(orgID)
	survey.RedirectURL = redirect.String
	survey.CreatedBy = createdBy.String
	if err := unmarshalColumn(languages, &survey.AvailableLanguages); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(thanks, &survey.ThanksHTML); err != nil {
		return nil, err
	}
	return &survey, nil
}

func (s *Store) CreateSurvey(ctx context.Context, survey *model.Survey) error {
	if survey.UUID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return errors.Wrap(err, "new survey uuid")
		}
		survey.UUID = id.String()
	}
	if survey.Visibility == "" {
		survey.Visibility = model.VisibilityPrivate
	}

	languages, err := marshalColumn(survey.AvailableLanguages)
	if err != nil {
		return err
	}
	thanks, err := marshalColumn(survey.ThanksHTML)
	if err != nil {
		return err
	}

	err = s.q.QueryRowContext(ctx, `
		INSERT INTO survey (uuid, name, organization_id, redirect_url, available_languages, visibility, archived, thanks_html, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		survey.UUID,
		survey.Name,
		nullInt64(survey.OrganizationID),
		nullString(survey.RedirectURL),
		languages,
		survey.Visibility,
		survey.Archived,
		thanks,
		nullString(survey.CreatedBy),
	).Scan(&survey.ID)
	return errors.Wrap(err, "insert survey")
}

// DeleteSurvey removes a survey with its whole subtree; child rows go via ON
// DELETE CASCADE. Returns false when no such survey exists.
func (s *Store) DeleteSurvey(ctx context.Context, id int64) (bool, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM survey WHERE id = ?`, id)
	if err != nil {
		return false, errors.Wrap(err, "delete survey")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "delete survey")
	}
	return n > 0, nil
}

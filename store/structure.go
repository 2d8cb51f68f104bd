package store

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/geosurvey/geosurvey/geometry"
	"github.com/geosurvey/geosurvey/model"
)

func (s *Store) SectionsBySurvey(ctx context.Context, surveyID int64) ([]*model.Section, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, survey_id, name, code, title, subheading, is_head,
			next_section_id, prev_section_id, start_map_position, zoom
		FROM section
		WHERE survey_id = ?
		ORDER BY id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get sections")
	}
	defer rows.Close()

	sections := []*model.Section{}
	byID := map[int64]*model.Section{}
	for rows.Next() {
		sec := model.Section{}
		var code, title, subheading, position sql.NullString
		var next, prev sql.NullInt64
		err = rows.Scan(
			&sec.ID, &sec.SurveyID, &sec.Name, &code, &title, &subheading, &sec.IsHead,
			&next, &prev, &position, &sec.Zoom,
		)
		if err != nil {
			return nil, errors.Wrap(err, "get sections.scan")
		}
		sec.Code = code.String
		sec.Title = title.String
		sec.Subheading = subheading.String
		sec.NextSectionID = int64Ptr(next)
		sec.PrevSectionID = int64Ptr(prev)
		if position.Valid {
			pt, err := geometry.DecodePoint(position.String)
			if err != nil {
				return nil, errors.Wrap(err, "get sections.position")
			}
			sec.StartMapPosition = pt
		}
		sections = append(sections, &sec)
		byID[sec.ID] = &sec
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "get sections")
	}

	translations, err := s.q.QueryContext(ctx, `
		SELECT t.section_id, t.language, t.title, t.subheading
		FROM section_translation t
		INNER JOIN section s ON (s.id = t.section_id)
		WHERE s.survey_id = ?
		ORDER BY t.id`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get section translations")
	}
	defer translations.Close()

	for translations.Next() {
		var sectionID int64
		tr := model.SectionTranslation{}
		var title, subheading sql.NullString
		if err := translations.Scan(&sectionID, &tr.Language, &title, &subheading); err != nil {
			return nil, errors.Wrap(err, "get section translations.scan")
		}
		tr.Title = title.String
		tr.Subheading = subheading.String
		if sec := byID[sectionID]; sec != nil {
			sec.Translations = append(sec.Translations, tr)
		}
	}
	return sections, translations.Err()
}

func (s *Store) CreateSection(ctx context.Context, section *model.Section) error {
	var position sql.NullString
	if section.StartMapPosition != nil {
		wkt, err := geometry.Encode(*section.StartMapPosition)
		if err != nil {
			return errors.Wrap(err, "insert section.position")
		}
		position = nullString(wkt)
	}

	err := s.q.QueryRowContext(ctx, `
		INSERT INTO section (survey_id, name, code, title, subheading, is_head, next_section_id, prev_section_id, start_map_position, zoom)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		section.SurveyID,
		section.Name,
		nullString(section.Code),
		nullString(section.Title),
		nullString(section.Subheading),
		section.IsHead,
		nullInt64(section.NextSectionID),
		nullInt64(section.PrevSectionID),
		position,
		section.Zoom,
	).Scan(&section.ID)
	if err != nil {
		return errors.Wrap(err, "insert section")
	}

	if len(section.Translations) == 0 {
		return nil
	}
	stmt, err := s.q.PrepareContext(ctx, `
		INSERT INTO section_translation (section_id, language, title, subheading)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "insert section.translations.prepare")
	}
	defer stmt.Close()

	for _, tr := range section.Translations {
		_, err := stmt.ExecContext(ctx, section.ID, tr.Language, nullString(tr.Title), nullString(tr.Subheading))
		if err != nil {
			return errors.Wrap(err, "insert section.translations")
		}
	}
	return nil
}

func (s *Store) UpdateSectionLinks(ctx context.Context, section *model.Section) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE section
		SET next_section_id = ?, prev_section_id = ?, is_head = ?
		WHERE id = ?`,
		nullInt64(section.NextSectionID),
		nullInt64(section.PrevSectionID),
		section.IsHead,
		section.ID,
	)
	return errors.Wrap(err, "update section links")
}

const questionColumns = `q.id, q.section_id, q.parent_question_id, q.code, q.order_number, q.input_type, q.choices`

func (s *Store) QuestionsBySection(ctx context.Context, sectionID int64) ([]*model.Question, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+questionColumns+`
		FROM question q
		WHERE q.section_id = ?
		ORDER BY q.order_number, q.id`,
		sectionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get questions")
	}
	defer rows.Close()

	questions := []*model.Question{}
	byID := map[int64]*model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, errors.Wrap(err, "get questions.scan")
		}
		questions = append(questions, q)
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "get questions")
	}

	translations, err := s.q.QueryContext(ctx, `
		SELECT t.question_id, t.language, t.name, t.subtext
		FROM question_translation t
		INNER JOIN question q ON (q.id = t.question_id)
		WHERE q.section_id = ?
		ORDER BY t.id`,
		sectionID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get question translations")
	}
	defer translations.Close()

	for translations.Next() {
		var questionID int64
		tr := model.QuestionTranslation{}
		var name, subtext sql.NullString
		if err := translations.Scan(&questionID, &tr.Language, &name, &subtext); err != nil {
			return nil, errors.Wrap(err, "get question translations.scan")
		}
		tr.Name = name.String
		tr.Subtext = subtext.String
		if q := byID[questionID]; q != nil {
			q.Translations = append(q.Translations, tr)
		}
	}
	return questions, translations.Err()
}

func (s *Store) QuestionByID(ctx context.Context, id int64) (*model.Question, error) {
	return s.question(ctx, `SELECT `+questionColumns+` FROM question q WHERE q.id = ?`, id)
}

func (s *Store) QuestionByCode(ctx context.Context, surveyID int64, code string) (*model.Question, error) {
	return s.question(ctx, `
		SELECT `+questionColumns+`
		FROM question q
		INNER JOIN section s ON (s.id = q.section_id)
		WHERE s.survey_id = ? AND q.code = ?`,
		surveyID, code)
}

func (s *Store) question(ctx context.Context, query string, args ...any) (*model.Question, error) {
	row := s.q.QueryRowContext(ctx, query, args...)
	q, err := scanQuestion(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get question")
	}

	translations, err := s.q.QueryContext(ctx, `
		SELECT language, name, subtext
		FROM question_translation
		WHERE question_id = ?
		ORDER BY id`,
		q.ID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get question translations")
	}
	defer translations.Close()

	for translations.Next() {
		tr := model.QuestionTranslation{}
		var name, subtext sql.NullString
		if err := translations.Scan(&tr.Language, &name, &subtext); err != nil {
			return nil, errors.Wrap(err, "get question translations.scan")
		}
		tr.Name = name.String
		tr.Subtext = subtext.String
		q.Translations = append(q.Translations, tr)
	}
	return q, translations.Err()
}

func scanQuestion(scan func(...any) error) (*model.Question, error) {
	q := model.Question{}
	var parent sql.NullInt64
	var choices sql.NullString
	err := scan(&q.ID, &q.SectionID, &parent, &q.Code, &q.OrderNumber, &q.InputType, &choices)
	if err != nil {
		return nil, err
	}
	q.ParentQuestionID = int64Ptr(parent)
	if err := unmarshalColumn(choices, &q.Choices); err != nil {
		return nil, err
	}
	return &q, nil
}

func (s *Store) QuestionCodeInUse(ctx context.Context, code string) (bool, error) {
	var one int
	err := s.q.QueryRowContext(ctx, `SELECT 1 FROM question WHERE code = ?`, code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "check question code")
	}
	return true, nil
}

func (s *Store) CreateQuestion(ctx context.Context, question *model.Question) error {
	choices, err := marshalColumn(question.Choices)
	if err != nil {
		return err
	}

	err = s.q.QueryRowContext(ctx, `
		INSERT INTO question (section_id, parent_question_id, code, order_number, input_type, choices)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		question.SectionID,
		nullInt64(question.ParentQuestionID),
		question.Code,
		question.OrderNumber,
		question.InputType,
		choices,
	).Scan(&question.ID)
	if err != nil {
		return errors.Wrap(err, "insert question")
	}

	if len(question.Translations) == 0 {
		return nil
	}
	stmt, err := s.q.PrepareContext(ctx, `
		INSERT INTO question_translation (question_id, language, name, subtext)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "insert question.translations.prepare")
	}
	defer stmt.Close()

	for _, tr := range question.Translations {
		_, err := stmt.ExecContext(ctx, question.ID, tr.Language, nullString(tr.Name), nullString(tr.Subtext))
		if err != nil {
			return errors.Wrap(err, "insert question.translations")
		}
	}
	return nil
}

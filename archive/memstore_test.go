package archive

import (
	"context"
	"fmt"

	"github.com/geosurvey/geosurvey/model"
)

// memStore is an in-memory Store and CodeGenerator for exercising the
// serialization core without a database. InTransaction approximates rollback
// by truncating the entity slices to their pre-transaction lengths, which is
// exact for imports: a failed import only ever appends rows.
type memStore struct {
	organizations []*model.Organization
	surveys       []*model.Survey
	sections      []*model.Section
	questions     []*model.Question
	sessions      []*model.Session
	answers       []*model.Answer

	nextID  int64
	codeSeq int
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) addOrganization(name, slug string) *model.Organization {
	org := &model.Organization{ID: m.id(), Name: name, Slug: slug}
	m.organizations = append(m.organizations, org)
	return org
}

func (m *memStore) OrganizationByName(ctx context.Context, name string) (*model.Organization, error) {
	for _, org := range m.organizations {
		if org.Name == name {
			return org, nil
		}
	}
	return nil, nil
}

func (m *memStore) OrganizationByID(ctx context.Context, id int64) (*model.Organization, error) {
	for _, org := range m.organizations {
		if org.ID == id {
			return org, nil
		}
	}
	return nil, nil
}

func (m *memStore) SurveyByName(ctx context.Context, name string) (*model.Survey, error) {
	for _, s := range m.surveys {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateSurvey(ctx context.Context, survey *model.Survey) error {
	survey.ID = m.id()
	if survey.UUID == "" {
		survey.UUID = fmt.Sprintf("uuid-%d", survey.ID)
	}
	m.surveys = append(m.surveys, survey)
	return nil
}

func (m *memStore) SectionsBySurvey(ctx context.Context, surveyID int64) ([]*model.Section, error) {
	out := []*model.Section{}
	for _, sec := range m.sections {
		if sec.SurveyID == surveyID {
			out = append(out, sec)
		}
	}
	return out, nil
}

func (m *memStore) CreateSection(ctx context.Context, section *model.Section) error {
	section.ID = m.id()
	m.sections = append(m.sections, section)
	return nil
}

func (m *memStore) UpdateSectionLinks(ctx context.Context, section *model.Section) error {
	return nil // sections are shared pointers, links are already in place
}

func (m *memStore) QuestionsBySection(ctx context.Context, sectionID int64) ([]*model.Question, error) {
	out := []*model.Question{}
	for _, q := range m.questions {
		if q.SectionID == sectionID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memStore) QuestionByID(ctx context.Context, id int64) (*model.Question, error) {
	for _, q := range m.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (m *memStore) QuestionByCode(ctx context.Context, surveyID int64, code string) (*model.Question, error) {
	for _, q := range m.questions {
		if q.Code != code {
			continue
		}
		for _, sec := range m.sections {
			if sec.ID == q.SectionID && sec.SurveyID == surveyID {
				return q, nil
			}
		}
	}
	return nil, nil
}

func (m *memStore) QuestionCodeInUse(ctx context.Context, code string) (bool, error) {
	for _, q := range m.questions {
		if q.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateQuestion(ctx context.Context, question *model.Question) error {
	question.ID = m.id()
	m.questions = append(m.questions, question)
	return nil
}

func (m *memStore) SessionsBySurvey(ctx context.Context, surveyID int64) ([]*model.Session, error) {
	out := []*model.Session{}
	for _, sess := range m.sessions {
		if sess.SurveyID == surveyID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (m *memStore) CreateSession(ctx context.Context, session *model.Session) error {
	session.ID = m.id()
	m.sessions = append(m.sessions, session)
	return nil
}

func (m *memStore) AnswersBySession(ctx context.Context, sessionID int64) ([]*model.Answer, error) {
	out := []*model.Answer{}
	for _, a := range m.answers {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) CreateAnswer(ctx context.Context, answer *model.Answer) error {
	answer.ID = m.id()
	m.answers = append(m.answers, answer)
	return nil
}

func (m *memStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	organizations := len(m.organizations)
	surveys := len(m.surveys)
	sections := len(m.sections)
	questions := len(m.questions)
	sessions := len(m.sessions)
	answers := len(m.answers)

	err := fn(m)
	if err != nil {
		m.organizations = m.organizations[:organizations]
		m.surveys = m.surveys[:surveys]
		m.sections = m.sections[:sections]
		m.questions = m.questions[:questions]
		m.sessions = m.sessions[:sessions]
		m.answers = m.answers[:answers]
	}
	return err
}

func (m *memStore) NewQuestionCode(ctx context.Context) (string, error) {
	for {
		m.codeSeq++
		code := fmt.Sprintf("q_gen%04d", m.codeSeq)
		inUse, _ := m.QuestionCodeInUse(ctx, code)
		if !inUse {
			return code, nil
		}
	}
}

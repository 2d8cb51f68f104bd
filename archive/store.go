package archive

import (
	"context"

	"github.com/geosurvey/geosurvey/model"
)

// Store is the persistence collaborator. Lookups return (nil, nil) when no
// row matches; creates assign the entity's ID in place.
type Store interface {
	OrganizationByName(ctx context.Context, name string) (*model.Organization, error)
	OrganizationByID(ctx context.Context, id int64) (*model.Organization, error)

	SurveyByName(ctx context.Context, name string) (*model.Survey, error)
	CreateSurvey(ctx context.Context, survey *model.Survey) error

	SectionsBySurvey(ctx context.Context, surveyID int64) ([]*model.Section, error)
	CreateSection(ctx context.Context, section *model.Section) error
	UpdateSectionLinks(ctx context.Context, section *model.Section) error

	QuestionsBySection(ctx context.Context, sectionID int64) ([]*model.Question, error)
	QuestionByID(ctx context.Context, id int64) (*model.Question, error)
	QuestionByCode(ctx context.Context, surveyID int64, code string) (*model.Question, error)
	QuestionCodeInUse(ctx context.Context, code string) (bool, error)
	CreateQuestion(ctx context.Context, question *model.Question) error

	SessionsBySurvey(ctx context.Context, surveyID int64) ([]*model.Session, error)
	CreateSession(ctx context.Context, session *model.Session) error

	AnswersBySession(ctx context.Context, sessionID int64) ([]*model.Answer, error)
	CreateAnswer(ctx context.Context, answer *model.Answer) error

	// InTransaction runs fn against a transactional view of the store and
	// commits only if fn returns nil. Structure import depends on this being
	// atomic.
	InTransaction(ctx context.Context, fn func(Store) error) error
}

// CodeGenerator produces fresh, collision-checked question codes, used when
// an imported code clashes with one already in the system.
type CodeGenerator interface {
	NewQuestionCode(ctx context.Context) (string, error)
}

package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geosurvey/geosurvey/archive"
	"github.com/geosurvey/geosurvey/database"
	"github.com/geosurvey/geosurvey/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestOrganizations(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	org := &model.Organization{Name: "Acme Research", Slug: "acme"}
	require.NoError(t, st.CreateOrganization(ctx, org))
	require.NotZero(t, org.ID)

	byName, err := st.OrganizationByName(ctx, "Acme Research")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, org.ID, byName.ID)

	byID, err := st.OrganizationByID(ctx, org.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "acme", byID.Slug)

	missing, err := st.OrganizationByName(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSurveyRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	org := &model.Organization{Name: "Acme", Slug: "acme"}
	require.NoError(t, st.CreateOrganization(ctx, org))

	survey := &model.Survey{
		Name:               "city-parks",
		OrganizationID:     &org.ID,
		RedirectURL:        "https://example.org/done",
		AvailableLanguages: []string{"en", "fi"},
		ThanksHTML:         map[string]string{"en": "<p>Thanks!</p>"},
		CreatedBy:          "admin",
	}
	require.NoError(t, st.CreateSurvey(ctx, survey))
	require.NotZero(t, survey.ID)
	assert.NotEmpty(t, survey.UUID, "a fresh survey gets a uuid assigned")
	assert.Equal(t, model.VisibilityPrivate, survey.Visibility, "visibility defaults to private")

	loaded, err := st.SurveyByName(ctx, "city-parks")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, survey.UUID, loaded.UUID)
	require.NotNil(t, loaded.OrganizationID)
	assert.Equal(t, org.ID, *loaded.OrganizationID)
	assert.Equal(t, []string{"en", "fi"}, loaded.AvailableLanguages)
	assert.Equal(t, "<p>Thanks!</p>", loaded.ThanksHTML["en"])
	assert.Equal(t, "admin", loaded.CreatedBy)

	byUUID, err := st.SurveyByUUID(ctx, survey.UUID)
	require.NoError(t, err)
	require.NotNil(t, byUUID)
	assert.Equal(t, survey.ID, byUUID.ID)

	missing, err := st.SurveyByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, st.CreateSurvey(ctx, &model.Survey{Name: "another"}))
	surveys, err := st.ListSurveys(ctx)
	require.NoError(t, err)
	require.Len(t, surveys, 2)
	assert.Equal(t, "another", surveys[0].Name, "surveys are listed by name")
}

func TestSectionRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	survey := &model.Survey{Name: "s"}
	require.NoError(t, st.CreateSurvey(ctx, survey))

	intro := &model.Section{
		SurveyID: survey.ID, Name: "intro", Code: "INTRO", Title: "Welcome", IsHead: true,
		StartMapPosition: &orb.Point{24.94, 60.17}, Zoom: 12,
		Translations: []model.SectionTranslation{{Language: "fi", Title: "Tervetuloa"}},
	}
	require.NoError(t, st.CreateSection(ctx, intro))
	main := &model.Section{SurveyID: survey.ID, Name: "main"}
	require.NoError(t, st.CreateSection(ctx, main))

	intro.NextSectionID = &main.ID
	require.NoError(t, st.UpdateSectionLinks(ctx, intro))
	main.PrevSectionID = &intro.ID
	require.NoError(t, st.UpdateSectionLinks(ctx, main))

	sections, err := st.SectionsBySurvey(ctx, survey.ID)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	got := sections[0]
	assert.Equal(t, "intro", got.Name)
	assert.True(t, got.IsHead)
	assert.Equal(t, "INTRO", got.Code)
	assert.Equal(t, 12, got.Zoom)
	require.NotNil(t, got.StartMapPosition)
	assert.Equal(t, orb.Point{24.94, 60.17}, *got.StartMapPosition)
	require.NotNil(t, got.NextSectionID)
	assert.Equal(t, main.ID, *got.NextSectionID)
	require.Len(t, got.Translations, 1)
	assert.Equal(t, "Tervetuloa", got.Translations[0].Title)

	require.NotNil(t, sections[1].PrevSectionID)
	assert.Equal(t, intro.ID, *sections[1].PrevSectionID)
	assert.Nil(t, sections[1].StartMapPosition)
}

func TestQuestionRoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	survey := &model.Survey{Name: "s"}
	require.NoError(t, st.CreateSurvey(ctx, survey))
	section := &model.Section{SurveyID: survey.ID, Name: "main", IsHead: true}
	require.NoError(t, st.CreateSection(ctx, section))

	second := &model.Question{
		SectionID: section.ID, Code: "Q2", OrderNumber: 2, InputType: model.InputText,
	}
	require.NoError(t, st.CreateQuestion(ctx, second))
	first := &model.Question{
		SectionID: section.ID, Code: "Q1", OrderNumber: 1, InputType: model.InputChoice,
		Choices: []model.Choice{
			{Code: 1, Name: model.PlainName("Red")},
			{Code: 2, Name: model.LocalizedName(map[string]string{"en": "Green", "fi": "Vihreä"})},
		},
		Translations: []model.QuestionTranslation{{Language: "en", Name: "Pick a color"}},
	}
	require.NoError(t, st.CreateQuestion(ctx, first))
	sub := &model.Question{
		SectionID: section.ID, ParentQuestionID: &first.ID, Code: "Q1_WHY", OrderNumber: 1,
		InputType: model.InputText,
	}
	require.NoError(t, st.CreateQuestion(ctx, sub))

	questions, err := st.QuestionsBySection(ctx, section.ID)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "Q1", questions[0].Code, "questions come out in display order")
	require.Len(t, questions[0].Choices, 2)
	assert.Equal(t, "Vihreä", questions[0].Choices[1].Name.Resolve("fi"))
	require.Len(t, questions[0].Translations, 1)
	assert.Equal(t, "Pick a color", questions[0].Translations[0].Name)

	byCode, err := st.QuestionByCode(ctx, survey.ID, "Q1_WHY")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	require.NotNil(t, byCode.ParentQuestionID)
	assert.Equal(t, first.ID, *byCode.ParentQuestionID)

	// the code lookup is scoped to the survey
	other := &model.Survey{Name: "other"}
	require.NoError(t, st.CreateSurvey(ctx, other))
	scoped, err := st.QuestionByCode(ctx, other.ID, "Q1")
	require.NoError(t, err)
	assert.Nil(t, scoped)

	inUse, err := st.QuestionCodeInUse(ctx, "Q1")
	require.NoError(t, err)
	assert.True(t, inUse)
	inUse, err = st.QuestionCodeInUse(ctx, "FREE")
	require.NoError(t, err)
	assert.False(t, inUse)
}

func TestSessionsAndAnswers(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	survey := &model.Survey{Name: "s"}
	require.NoError(t, st.CreateSurvey(ctx, survey))
	section := &model.Section{SurveyID: survey.ID, Name: "main", IsHead: true}
	require.NoError(t, st.CreateSection(ctx, section))
	question := &model.Question{
		SectionID: section.ID, Code: "Q1", OrderNumber: 1, InputType: model.InputChoice,
		Choices: []model.Choice{{Code: 1, Name: model.PlainName("Red")}},
	}
	require.NoError(t, st.CreateQuestion(ctx, question))
	place := &model.Question{
		SectionID: section.ID, Code: "Q2", OrderNumber: 2, InputType: model.InputPoint,
	}
	require.NoError(t, st.CreateQuestion(ctx, place))

	started := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	ended := started.Add(5 * time.Minute)
	session := &model.Session{SurveyID: survey.ID, StartedAt: started, EndedAt: &ended, Language: "fi"}
	require.NoError(t, st.CreateSession(ctx, session))

	sessions, err := st.SessionsBySurvey(ctx, survey.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].StartedAt.Equal(started))
	require.NotNil(t, sessions[0].EndedAt)
	assert.True(t, sessions[0].EndedAt.Equal(ended))
	assert.Equal(t, "fi", sessions[0].Language)

	text := "because"
	numeric := 4.5
	yes := true
	choiceAnswer := &model.Answer{
		SessionID: session.ID, QuestionID: question.ID,
		Numeric: &numeric, Text: &text, YN: &yes, SelectedChoices: []int{1},
	}
	require.NoError(t, st.CreateAnswer(ctx, choiceAnswer))
	geoAnswer := &model.Answer{
		SessionID: session.ID, QuestionID: place.ID, ParentAnswerID: &choiceAnswer.ID,
		Geometry: orb.LineString{{0, 0}, {1, 1}},
	}
	require.NoError(t, st.CreateAnswer(ctx, geoAnswer))

	answers, err := st.AnswersBySession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)

	got := answers[0]
	require.NotNil(t, got.Numeric)
	assert.Equal(t, 4.5, *got.Numeric)
	require.NotNil(t, got.Text)
	assert.Equal(t, "because", *got.Text)
	require.NotNil(t, got.YN)
	assert.True(t, *got.YN)
	assert.Equal(t, []int{1}, got.SelectedChoices)
	assert.Nil(t, got.Geometry)

	require.NotNil(t, answers[1].ParentAnswerID)
	assert.Equal(t, choiceAnswer.ID, *answers[1].ParentAnswerID)
	assert.Equal(t, orb.LineString{{0, 0}, {1, 1}}, answers[1].Geometry)
}

func TestInTransaction(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	err := st.InTransaction(ctx, func(tx archive.Store) error {
		if err := tx.CreateSurvey(ctx, &model.Survey{Name: "doomed"}); err != nil {
			return err
		}
		// nested calls reuse the surrounding transaction
		return tx.InTransaction(ctx, func(nested archive.Store) error {
			survey, err := nested.SurveyByName(ctx, "doomed")
			if err != nil {
				return err
			}
			require.NotNil(t, survey, "uncommitted rows must be visible inside the tx")
			return assert.AnError
		})
	})
	require.ErrorIs(t, err, assert.AnError)

	survey, err := st.SurveyByName(ctx, "doomed")
	require.NoError(t, err)
	assert.Nil(t, survey, "the failed transaction must leave nothing behind")

	err = st.InTransaction(ctx, func(tx archive.Store) error {
		return tx.CreateSurvey(ctx, &model.Survey{Name: "kept"})
	})
	require.NoError(t, err)
	survey, err = st.SurveyByName(ctx, "kept")
	require.NoError(t, err)
	assert.NotNil(t, survey)
}

func TestDeleteSurveyCascades(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	survey := &model.Survey{Name: "s"}
	require.NoError(t, st.CreateSurvey(ctx, survey))
	section := &model.Section{SurveyID: survey.ID, Name: "main", IsHead: true}
	require.NoError(t, st.CreateSection(ctx, section))
	question := &model.Question{SectionID: section.ID, Code: "Q1", InputType: model.InputText}
	require.NoError(t, st.CreateQuestion(ctx, question))
	session := &model.Session{SurveyID: survey.ID, StartedAt: time.Now()}
	require.NoError(t, st.CreateSession(ctx, session))
	answer := &model.Answer{SessionID: session.ID, QuestionID: question.ID}
	require.NoError(t, st.CreateAnswer(ctx, answer))

	found, err := st.DeleteSurvey(ctx, survey.ID)
	require.NoError(t, err)
	assert.True(t, found)

	sections, err := st.SectionsBySurvey(ctx, survey.ID)
	require.NoError(t, err)
	assert.Empty(t, sections)
	sessions, err := st.SessionsBySurvey(ctx, survey.ID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	answers, err := st.AnswersBySession(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, answers)

	found, err = st.DeleteSurvey(ctx, survey.ID)
	require.NoError(t, err)
	assert.False(t, found, "a second delete finds nothing")
}

func TestNewQuestionCode(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	code, err := st.NewQuestionCode(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "q_"), code)
	assert.Len(t, code, 10)

	other, err := st.NewQuestionCode(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

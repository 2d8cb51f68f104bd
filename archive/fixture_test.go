package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"

	"github.com/geosurvey/geosurvey/model"
)

var fixedNow = time.Date(2024, 5, 20, 10, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T {
	return &v
}

// fixtureStore populates a memStore with one survey: three chained sections
// plus an orphan, nested questions with localized choices, and one session
// with scalar, choice, geometry and sub-answers. Sections are inserted out of
// chain order on purpose.
func fixtureStore(t *testing.T) (*memStore, *model.Survey) {
	t.Helper()
	ctx := context.Background()
	st := newMemStore()

	org := st.addOrganization("Acme Research", "acme")
	survey := &model.Survey{
		Name:               "city-parks",
		OrganizationID:     &org.ID,
		RedirectURL:        "https://example.org/done",
		AvailableLanguages: []string{"en", "fi"},
		Visibility:         model.VisibilityPublic,
		ThanksHTML:         map[string]string{"en": "<p>Thank you!</p>", "fi": "<p>Kiitos!</p>"},
	}
	require.NoError(t, st.CreateSurvey(ctx, survey))

	parks := &model.Section{
		SurveyID: survey.ID, Name: "parks", Code: "PARKS", Title: "Parks",
	}
	require.NoError(t, st.CreateSection(ctx, parks))
	feedback := &model.Section{
		SurveyID: survey.ID, Name: "feedback", Code: "FDBK", Title: "Feedback",
	}
	require.NoError(t, st.CreateSection(ctx, feedback))
	intro := &model.Section{
		SurveyID: survey.ID, Name: "intro", Code: "INTRO", Title: "Welcome", IsHead: true,
		StartMapPosition: ptr(orb.Point{24.94, 60.17}), Zoom: 12,
		Translations: []model.SectionTranslation{
			{Language: "fi", Title: "Tervetuloa"},
		},
	}
	require.NoError(t, st.CreateSection(ctx, intro))
	orphan := &model.Section{
		SurveyID: survey.ID, Name: "extra", Code: "EXTRA",
	}
	require.NoError(t, st.CreateSection(ctx, orphan))

	intro.NextSectionID = &parks.ID
	parks.PrevSectionID = &intro.ID
	parks.NextSectionID = &feedback.ID
	feedback.PrevSectionID = &parks.ID

	age := &model.Question{
		SectionID: intro.ID, Code: "AGE", OrderNumber: 1, InputType: model.InputNumber,
		Translations: []model.QuestionTranslation{
			{Language: "en", Name: "How old are you?"},
			{Language: "fi", Name: "Kuinka vanha olet?"},
		},
	}
	require.NoError(t, st.CreateQuestion(ctx, age))

	rate := &model.Question{
		SectionID: parks.ID, Code: "PARK_RATE", OrderNumber: 1, InputType: model.InputRating,
		Choices: []model.Choice{
			{Code: 1, Name: model.LocalizedName(map[string]string{"en": "Poor", "fi": "Huono"})},
			{Code: 2, Name: model.LocalizedName(map[string]string{"en": "Fine", "fi": "Hyvä"})},
			{Code: 3, Name: model.PlainName("Excellent")},
		},
	}
	require.NoError(t, st.CreateQuestion(ctx, rate))
	why := &model.Question{
		SectionID: parks.ID, ParentQuestionID: &rate.ID, Code: "PARK_WHY", OrderNumber: 1,
		InputType: model.InputText,
	}
	require.NoError(t, st.CreateQuestion(ctx, why))
	where := &model.Question{
		SectionID: parks.ID, Code: "PARK_GEO", OrderNumber: 2, InputType: model.InputPoint,
	}
	require.NoError(t, st.CreateQuestion(ctx, where))

	session := &model.Session{
		SurveyID:  survey.ID,
		StartedAt: fixedNow.Add(-30 * time.Minute),
		EndedAt:   ptr(fixedNow.Add(-25 * time.Minute)),
		Language:  "fi",
	}
	require.NoError(t, st.CreateSession(ctx, session))

	ageAnswer := &model.Answer{SessionID: session.ID, QuestionID: age.ID, Numeric: ptr(33.0)}
	require.NoError(t, st.CreateAnswer(ctx, ageAnswer))
	rateAnswer := &model.Answer{SessionID: session.ID, QuestionID: rate.ID, SelectedChoices: []int{2}}
	require.NoError(t, st.CreateAnswer(ctx, rateAnswer))
	whyAnswer := &model.Answer{
		SessionID: session.ID, QuestionID: why.ID, ParentAnswerID: &rateAnswer.ID,
		Text: ptr("Needs more benches"),
	}
	require.NoError(t, st.CreateAnswer(ctx, whyAnswer))
	whereAnswer := &model.Answer{
		SessionID: session.ID, QuestionID: where.ID,
		Geometry: orb.Point{30.5, 60.0},
	}
	require.NoError(t, st.CreateAnswer(ctx, whereAnswer))

	return st, survey
}

func exportBytes(t *testing.T, st *memStore, survey *model.Survey, mode Mode) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	exporter := Exporter{Store: st, Now: func() time.Time { return fixedNow }}
	require.NoError(t, exporter.Export(context.Background(), buf, survey, mode))
	return buf.Bytes()
}

func unzipArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := map[string][]byte{}
	for _, f := range zr.File {
		r, err := f.Open()
		require.NoError(t, err)
		content := &bytes.Buffer{}
		_, err = content.ReadFrom(r)
		r.Close()
		require.NoError(t, err)
		files[f.Name] = content.Bytes()
	}
	return files
}

// buildArchive zips arbitrary documents, for handcrafted import payloads.
func buildArchive(t *testing.T, docs map[string]any) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for name, doc := range docs {
		f, err := zw.Create(name)
		require.NoError(t, err)

		content, ok := doc.([]byte)
		if !ok {
			var err error
			content, err = json.Marshal(doc)
			require.NoError(t, err)
		}
		_, err = f.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func importArchive(t *testing.T, st *memStore, data []byte, opts ImportOptions) (*model.Survey, []string, error) {
	t.Helper()
	importer := Importer{Store: st, Codes: st}
	return importer.Import(context.Background(), bytes.NewReader(data), opts)
}

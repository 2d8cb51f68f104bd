package archive

import (
	"archive/zip"
	"context"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/geosurvey/geosurvey/model"
)

// Exporter writes survey archives. Now is overridable for deterministic
// output in tests; nil means time.Now.
type Exporter struct {
	Store Store
	Now   func() time.Time
}

// Export writes the survey as a zip archive in the given mode. An empty mode
// defaults to structure-only. The mode is checked before anything is written.
func (exp *Exporter) Export(ctx context.Context, w io.Writer, survey *model.Survey, mode Mode) error {
	if mode == "" {
		mode = ModeStructure
	}
	if !mode.Valid() {
		return exportErrorf("unsupported export mode %q", mode)
	}

	exportedAt := formatTime(exp.now())

	zw := zip.NewWriter(w)
	if mode.IncludesStructure() {
		g, err := exp.loadStructure(ctx, survey)
		if err != nil {
			return err
		}
		data, err := serializeSurvey(g)
		if err != nil {
			return exportErrorf("export %s: %s", StructureFile, err)
		}
		doc := SurveyDocument{
			Version:    FormatVersion,
			ExportedAt: exportedAt,
			Mode:       mode,
			Survey:     data,
		}
		if err := writeDocument(zw, StructureFile, doc); err != nil {
			return err
		}
	}
	if mode.IncludesData() {
		g, err := exp.loadData(ctx, survey)
		if err != nil {
			return err
		}
		sessions, err := serializeSessions(g)
		if err != nil {
			return exportErrorf("export %s: %s", ResponsesFile, err)
		}
		doc := ResponsesDocument{
			Version:    FormatVersion,
			ExportedAt: exportedAt,
			SurveyName: survey.Name,
			Sessions:   sessions,
		}
		if err := writeDocument(zw, ResponsesFile, doc); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return exportErrorf("write archive: %s", err)
	}
	return nil
}

func (exp *Exporter) now() time.Time {
	if exp.Now != nil {
		return exp.Now()
	}
	return time.Now()
}

func (exp *Exporter) loadStructure(ctx context.Context, survey *model.Survey) (*graph, error) {
	g := &graph{
		survey:       survey,
		questions:    make(map[int64][]*model.Question),
		questionByID: make(map[int64]*model.Question),
	}

	if survey.OrganizationID != nil {
		org, err := exp.Store.OrganizationByID(ctx, *survey.OrganizationID)
		if err != nil {
			return nil, exportErrorf("load organization: %s", err)
		}
		g.organization = org
	}

	sections, err := exp.Store.SectionsBySurvey(ctx, survey.ID)
	if err != nil {
		return nil, exportErrorf("load sections: %s", err)
	}
	g.sections = sections

	for _, sec := range sections {
		questions, err := exp.Store.QuestionsBySection(ctx, sec.ID)
		if err != nil {
			return nil, exportErrorf("load questions: %s", err)
		}
		g.questions[sec.ID] = questions
		for _, q := range questions {
			g.questionByID[q.ID] = q
		}
	}
	return g, nil
}

func (exp *Exporter) loadData(ctx context.Context, survey *model.Survey) (*graph, error) {
	// answers reference questions by code, so data export needs the
	// structure loaded too
	g, err := exp.loadStructure(ctx, survey)
	if err != nil {
		return nil, err
	}
	g.answers = make(map[int64][]*model.Answer)

	sessions, err := exp.Store.SessionsBySurvey(ctx, survey.ID)
	if err != nil {
		return nil, exportErrorf("load sessions: %s", err)
	}
	g.sessions = sessions

	for _, sess := range sessions {
		answers, err := exp.Store.AnswersBySession(ctx, sess.ID)
		if err != nil {
			return nil, exportErrorf("load answers: %s", err)
		}
		g.answers[sess.ID] = answers
	}
	return g, nil
}

func writeDocument(zw *zip.Writer, name string, doc any) error {
	f, err := zw.Create(name)
	if err != nil {
		return exportErrorf("write %s: %s", name, err)
	}
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return exportErrorf("encode %s: %s", name, err)
	}
	if _, err := f.Write(content); err != nil {
		return exportErrorf("write %s: %s", name, err)
	}
	return nil
}

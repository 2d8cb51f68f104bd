package archive

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/geosurvey/geosurvey/geometry"
	"github.com/geosurvey/geosurvey/model"
)

// ImportOptions carries caller-side overrides. Organization, when set, takes
// precedence over the organization name recorded in the archive.
type ImportOptions struct {
	Organization *model.Organization
	CreatedBy    string
}

type Importer struct {
	Store Store
	Codes CodeGenerator
}

// Import validates an archive and reconstructs its contents through the
// store, inside one transaction. Structure import is all-or-nothing; response
// data is imported best-effort per answer, with skipped or adjusted records
// reported as warnings. The returned survey is the one created by structure
// import, or the existing one a data-only archive attached to.
func (imp *Importer) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*model.Survey, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, importErrorf("cannot read archive: %s", err)
	}
	contents, err := Validate(data)
	if err != nil {
		return nil, nil, err
	}

	var survey *model.Survey
	var warnings []string
	err = imp.Store.InTransaction(ctx, func(tx Store) error {
		run := &importRun{
			store: tx,
			codes: imp.Codes,
			remap: map[string]string{},
		}
		if contents.HasStructure {
			created, err := run.importStructure(ctx, contents.Survey, opts)
			if err != nil {
				return err
			}
			survey = created
		}
		if contents.HasData {
			attached, err := run.importData(ctx, contents.Responses, survey)
			if err != nil {
				return err
			}
			survey = attached
		}
		warnings = run.warnings
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return survey, warnings, nil
}

// importRun is the per-import state: the transactional store view, the code
// collision remap table and the accumulated warnings.
type importRun struct {
	store    Store
	codes    CodeGenerator
	remap    map[string]string
	warnings []string
}

func (run *importRun) warnf(format string, args ...any) {
	run.warnings = append(run.warnings, fmt.Sprintf(format, args...))
}

func (run *importRun) importStructure(ctx context.Context, doc *SurveyDocument, opts ImportOptions) (*model.Survey, error) {
	in := doc.Survey
	if in.Name == "" {
		return nil, importErrorf("survey.name is required")
	}
	existing, err := run.store.SurveyByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, importErrorf("survey %q already exists", in.Name)
	}

	survey := &model.Survey{
		Name:               in.Name,
		RedirectURL:        in.RedirectURL,
		AvailableLanguages: in.AvailableLanguages,
		Visibility:         model.VisibilityPrivate,
		ThanksHTML:         in.ThanksHTML,
		CreatedBy:          opts.CreatedBy,
	}
	if opts.Organization != nil {
		survey.OrganizationID = &opts.Organization.ID
	} else if in.Organization != "" {
		org, err := run.store.OrganizationByName(ctx, in.Organization)
		if err != nil {
			return nil, err
		}
		if org != nil {
			survey.OrganizationID = &org.ID
		}
	}
	if err := run.store.CreateSurvey(ctx, survey); err != nil {
		return nil, err
	}

	// first pass: create all sections, so name references resolve in the
	// second pass regardless of chain direction
	byName := make(map[string]*model.Section, len(in.Sections))
	for _, sd := range in.Sections {
		section := &model.Section{
			SurveyID:   survey.ID,
			Name:       sd.Name,
			Code:       truncateCode(sd.Code),
			Title:      sd.Title,
			Subheading: sd.Subheading,
			IsHead:     sd.IsHead,
			Zoom:       sd.Zoom,
		}
		if sd.StartMapPosition != "" {
			pt, err := geometry.DecodePoint(sd.StartMapPosition)
			if err != nil {
				return nil, importErrorf("%s", err)
			}
			section.StartMapPosition = pt
		}
		for _, tr := range sd.Translations {
			section.Translations = append(section.Translations, model.SectionTranslation{
				Language:   tr.Language,
				Title:      tr.Title,
				Subheading: tr.Subheading,
			})
		}
		if err := run.store.CreateSection(ctx, section); err != nil {
			return nil, err
		}
		byName[section.Name] = section
	}

	// second pass: resolve the serialized name references into row ids
	for _, sd := range in.Sections {
		section := byName[sd.Name]
		if sd.NextSectionName != "" {
			if next, ok := byName[sd.NextSectionName]; ok {
				section.NextSectionID = &next.ID
			} else {
				run.warnf("section %q references unknown next section %q", sd.Name, sd.NextSectionName)
			}
		}
		if sd.PrevSectionName != "" {
			if prev, ok := byName[sd.PrevSectionName]; ok {
				section.PrevSectionID = &prev.ID
			} else {
				run.warnf("section %q references unknown previous section %q", sd.Name, sd.PrevSectionName)
			}
		}
		if err := run.store.UpdateSectionLinks(ctx, section); err != nil {
			return nil, err
		}
	}

	for _, sd := range in.Sections {
		section := byName[sd.Name]
		for i, qd := range sd.Questions {
			if _, err := run.createQuestion(ctx, doc, section, nil, qd, i+1); err != nil {
				return nil, err
			}
		}
	}
	return survey, nil
}

func (run *importRun) createQuestion(ctx context.Context, doc *SurveyDocument, section *model.Section, parent *model.Question, qd QuestionData, order int) (*model.Question, error) {
	inputType := model.InputType(qd.InputType)
	if !inputType.Valid() {
		return nil, importErrorf("Invalid input_type: %s", qd.InputType)
	}

	choices, err := resolveChoices(doc, qd)
	if err != nil {
		return nil, err
	}
	if inputType.RequiresChoices() && len(choices) == 0 {
		return nil, importErrorf("question %q requires choices", qd.Code)
	}

	code := qd.Code
	inUse := code == ""
	if code != "" {
		inUse, err = run.store.QuestionCodeInUse(ctx, code)
		if err != nil {
			return nil, err
		}
	}
	if inUse {
		fresh, err := run.codes.NewQuestionCode(ctx)
		if err != nil {
			return nil, err
		}
		if qd.Code != "" {
			run.remap[qd.Code] = fresh
		}
		code = fresh
	}

	question := &model.Question{
		SectionID:   section.ID,
		Code:        code,
		OrderNumber: order,
		InputType:   inputType,
		Choices:     choices,
	}
	if parent != nil {
		question.ParentQuestionID = &parent.ID
	}
	for _, tr := range qd.Translations {
		question.Translations = append(question.Translations, model.QuestionTranslation{
			Language: tr.Language,
			Name:     tr.Name,
			Subtext:  tr.Subtext,
		})
	}
	if err := run.store.CreateQuestion(ctx, question); err != nil {
		return nil, err
	}

	for i, sub := range qd.SubQuestions {
		if _, err := run.createQuestion(ctx, doc, section, question, sub, i+1); err != nil {
			return nil, err
		}
	}
	return question, nil
}

// resolveChoices prefers the question's inline choices; a legacy
// option_group_name reference is upgraded to the inline shape. Legacy group
// entries without an explicit code get 1-based sequential codes.
func resolveChoices(doc *SurveyDocument, qd QuestionData) ([]model.Choice, error) {
	if len(qd.Choices) > 0 {
		choices := make([]model.Choice, 0, len(qd.Choices))
		for _, c := range qd.Choices {
			choices = append(choices, model.Choice{Code: c.Code, Name: c.Name})
		}
		return choices, nil
	}
	if qd.OptionGroupName == "" {
		return nil, nil
	}

	var group *OptionGroup
	for i := range doc.OptionGroups {
		if doc.OptionGroups[i].Name == qd.OptionGroupName {
			group = &doc.OptionGroups[i]
			break
		}
	}
	if group == nil {
		return nil, importErrorf("%s not found in option_groups", qd.OptionGroupName)
	}

	choices := make([]model.Choice, 0, len(group.Choices))
	for i, gc := range group.Choices {
		code := i + 1
		if gc.Code != nil {
			code = *gc.Code
		}
		name := model.PlainName(gc.Name)
		if len(gc.Translations) > 0 {
			names := map[string]string{"en": gc.Name}
			for _, tr := range gc.Translations {
				names[tr.Language] = tr.Name
			}
			name = model.LocalizedName(names)
		}
		choices = append(choices, model.Choice{Code: code, Name: name})
	}
	return choices, nil
}

func (run *importRun) importData(ctx context.Context, doc *ResponsesDocument, created *model.Survey) (*model.Survey, error) {
	survey := created
	if survey == nil {
		found, err := run.store.SurveyByName(ctx, doc.SurveyName)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, importErrorf("importing responses requires existing survey %q", doc.SurveyName)
		}
		survey = found
	}

	for i, sd := range doc.Sessions {
		session := &model.Session{
			SurveyID: survey.ID,
			Language: sd.Language,
		}
		if sd.StartedAt != "" {
			started, err := time.Parse(time.RFC3339, sd.StartedAt)
			if err != nil {
				run.warnf("session %d: invalid started_at %q", i+1, sd.StartedAt)
			} else {
				session.StartedAt = started
			}
		}
		if sd.EndedAt != "" {
			ended, err := time.Parse(time.RFC3339, sd.EndedAt)
			if err != nil {
				run.warnf("session %d: invalid ended_at %q", i+1, sd.EndedAt)
			} else {
				session.EndedAt = &ended
			}
		}
		if err := run.store.CreateSession(ctx, session); err != nil {
			return nil, err
		}
		for _, ad := range sd.Answers {
			if err := run.createAnswer(ctx, survey, session, nil, ad); err != nil {
				return nil, err
			}
		}
	}
	return survey, nil
}

// createAnswer resolves the answer's question code, consulting the collision
// remap table first. An unresolvable code is a warning, not a failure: the
// session survives with that answer (and its sub-answers) skipped.
func (run *importRun) createAnswer(ctx context.Context, survey *model.Survey, session *model.Session, parent *model.Answer, ad AnswerData) error {
	code := ad.QuestionCode
	if fresh, ok := run.remap[code]; ok {
		code = fresh
	}
	question, err := run.store.QuestionByCode(ctx, survey.ID, code)
	if err != nil {
		return err
	}
	if question == nil {
		run.warnf("question code %q not found, skipping answer", ad.QuestionCode)
		return nil
	}

	answer := &model.Answer{
		SessionID:  session.ID,
		QuestionID: question.ID,
		Text:       ad.Text,
		Numeric:    ad.Numeric,
		YN:         ad.YN,
	}
	if parent != nil {
		answer.ParentAnswerID = &parent.ID
	}
	if ad.Geometry != "" {
		g, err := geometry.Decode(ad.Geometry)
		if err != nil {
			return importErrorf("%s", err)
		}
		answer.Geometry = g
	}
	for _, name := range ad.Choices {
		matched := false
		for _, c := range question.Choices {
			if c.Name.Matches(name) {
				answer.SelectedChoices = append(answer.SelectedChoices, c.Code)
				matched = true
				break
			}
		}
		if !matched {
			run.warnf("choice %q not found for question %q", name, question.Code)
		}
	}
	if err := run.store.CreateAnswer(ctx, answer); err != nil {
		return err
	}

	for _, sub := range ad.SubAnswers {
		if err := run.createAnswer(ctx, survey, session, answer, sub); err != nil {
			return err
		}
	}
	return nil
}

func truncateCode(code string) string {
	if len(code) > model.MaxSectionCode {
		return code[:model.MaxSectionCode]
	}
	return code
}

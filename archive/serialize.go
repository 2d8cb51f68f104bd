package archive

import (
	"sort"
	"time"

	"github.com/geosurvey/geosurvey/geometry"
	"github.com/geosurvey/geosurvey/model"
)

// graph is a fully loaded survey subtree. The serializers below are pure
// functions over it.
type graph struct {
	survey       *model.Survey
	organization *model.Organization
	sections     []*model.Section
	questions    map[int64][]*model.Question // keyed by section id
	questionByID map[int64]*model.Question
	sessions     []*model.Session
	answers      map[int64][]*model.Answer // keyed by session id
}

func serializeSurvey(g *graph) (SurveyData, error) {
	sections, err := serializeSections(g)
	if err != nil {
		return SurveyData{}, err
	}

	data := SurveyData{
		Name:               g.survey.Name,
		RedirectURL:        g.survey.RedirectURL,
		AvailableLanguages: g.survey.AvailableLanguages,
		ThanksHTML:         g.survey.ThanksHTML,
		Sections:           sections,
	}
	if g.organization != nil {
		data.Organization = g.organization.Name
	}
	return data, nil
}

// serializeSections emits sections in linked-list traversal order, starting
// at the head. Sections unreachable from the head are appended after the
// chain rather than dropped.
func serializeSections(g *graph) ([]SectionData, error) {
	ordered := chainOrder(g.sections)
	byID := make(map[int64]*model.Section, len(g.sections))
	for _, sec := range g.sections {
		byID[sec.ID] = sec
	}

	out := make([]SectionData, 0, len(ordered))
	for _, sec := range ordered {
		data := SectionData{
			Name:       sec.Name,
			Code:       sec.Code,
			Title:      sec.Title,
			Subheading: sec.Subheading,
			IsHead:     sec.IsHead,
			Zoom:       sec.Zoom,
			Questions:  serializeQuestions(g.questions[sec.ID]),
		}
		if sec.NextSectionID != nil {
			if next := byID[*sec.NextSectionID]; next != nil {
				data.NextSectionName = next.Name
			}
		}
		if sec.PrevSectionID != nil {
			if prev := byID[*sec.PrevSectionID]; prev != nil {
				data.PrevSectionName = prev.Name
			}
		}
		if sec.StartMapPosition != nil {
			wkt, err := geometry.Encode(*sec.StartMapPosition)
			if err != nil {
				return nil, err
			}
			data.StartMapPosition = wkt
		}
		for _, tr := range sec.Translations {
			data.Translations = append(data.Translations, SectionTranslationData{
				Language:   tr.Language,
				Title:      tr.Title,
				Subheading: tr.Subheading,
			})
		}
		out = append(out, data)
	}
	return out, nil
}

// chainOrder walks next-references from the head section, then appends any
// orphan rows in their incoming order.
func chainOrder(sections []*model.Section) []*model.Section {
	byID := make(map[int64]*model.Section, len(sections))
	for _, sec := range sections {
		byID[sec.ID] = sec
	}

	visited := make(map[int64]bool, len(sections))
	ordered := make([]*model.Section, 0, len(sections))
	for _, sec := range sections {
		if !sec.IsHead {
			continue
		}
		for cur := sec; cur != nil && !visited[cur.ID]; {
			visited[cur.ID] = true
			ordered = append(ordered, cur)
			if cur.NextSectionID == nil {
				break
			}
			cur = byID[*cur.NextSectionID]
		}
		break
	}
	for _, sec := range sections {
		if !visited[sec.ID] {
			ordered = append(ordered, sec)
		}
	}
	return ordered
}

// serializeQuestions emits top-level questions with their sub-questions
// embedded, one nesting level deep, ordered by display order.
func serializeQuestions(questions []*model.Question) []QuestionData {
	sorted := make([]*model.Question, len(questions))
	copy(sorted, questions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderNumber < sorted[j].OrderNumber
	})

	subs := make(map[int64][]*model.Question)
	for _, q := range sorted {
		if q.ParentQuestionID != nil {
			subs[*q.ParentQuestionID] = append(subs[*q.ParentQuestionID], q)
		}
	}

	out := []QuestionData{}
	for _, q := range sorted {
		if q.ParentQuestionID != nil {
			continue
		}
		data := serializeQuestion(q)
		for _, sub := range subs[q.ID] {
			data.SubQuestions = append(data.SubQuestions, serializeQuestion(sub))
		}
		out = append(out, data)
	}
	return out
}

func serializeQuestion(q *model.Question) QuestionData {
	data := QuestionData{
		Code:      q.Code,
		InputType: string(q.InputType),
	}
	for _, c := range q.Choices {
		data.Choices = append(data.Choices, ChoiceData{Code: c.Code, Name: c.Name})
	}
	for _, tr := range q.Translations {
		data.Translations = append(data.Translations, QuestionTranslationData{
			Language: tr.Language,
			Name:     tr.Name,
			Subtext:  tr.Subtext,
		})
	}
	return data
}

func serializeSessions(g *graph) ([]SessionData, error) {
	out := make([]SessionData, 0, len(g.sessions))
	for _, sess := range g.sessions {
		data := SessionData{
			StartedAt: formatTime(sess.StartedAt),
			Language:  sess.Language,
		}
		if sess.EndedAt != nil {
			data.EndedAt = formatTime(*sess.EndedAt)
		}
		answers, err := serializeAnswers(g, g.answers[sess.ID])
		if err != nil {
			return nil, err
		}
		data.Answers = answers
		out = append(out, data)
	}
	return out, nil
}

// serializeAnswers emits top-level answers with sub-answers embedded, linked
// to their questions by code.
func serializeAnswers(g *graph, answers []*model.Answer) ([]AnswerData, error) {
	subs := make(map[int64][]*model.Answer)
	for _, a := range answers {
		if a.ParentAnswerID != nil {
			subs[*a.ParentAnswerID] = append(subs[*a.ParentAnswerID], a)
		}
	}

	out := []AnswerData{}
	for _, a := range answers {
		if a.ParentAnswerID != nil {
			continue
		}
		data, err := serializeAnswer(g, a)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs[a.ID] {
			subData, err := serializeAnswer(g, sub)
			if err != nil {
				return nil, err
			}
			data.SubAnswers = append(data.SubAnswers, subData)
		}
		out = append(out, data)
	}
	return out, nil
}

func serializeAnswer(g *graph, a *model.Answer) (AnswerData, error) {
	question := g.questionByID[a.QuestionID]
	data := AnswerData{
		Text:    a.Text,
		Numeric: a.Numeric,
		YN:      a.YN,
	}
	if question != nil {
		data.QuestionCode = question.Code
		data.Choices = serializeChoices(question, a.SelectedChoices)
	}
	if a.Geometry != nil {
		wkt, err := geometry.Encode(a.Geometry)
		if err != nil {
			return AnswerData{}, err
		}
		data.Geometry = wkt
	}
	return data, nil
}

// serializeChoices maps the selected codes to display names, using the
// language-agnostic default resolution.
func serializeChoices(question *model.Question, codes []int) []string {
	var names []string
	for _, code := range codes {
		for _, c := range question.Choices {
			if c.Code == code {
				names = append(names, c.Name.Resolve(""))
				break
			}
		}
	}
	return names
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

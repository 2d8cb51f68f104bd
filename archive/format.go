// Package archive implements the portable survey archive: a zip container
// holding a structure document (survey.json) and/or a responses document
// (responses.json). Export serializes a survey graph into the container;
// import validates a container and reconstructs the graph through the
// persistence collaborator.
package archive

import "github.com/geosurvey/geosurvey/model"

// FormatVersion is the current archive format version. Importing any other
// version fails.
const FormatVersion = "1.0"

var supportedVersions = map[string]bool{
	FormatVersion: true,
}

const (
	StructureFile = "survey.json"
	ResponsesFile = "responses.json"
)

type Mode string

const (
	ModeStructure Mode = "structure"
	ModeData      Mode = "data"
	ModeFull      Mode = "full"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeStructure, ModeData, ModeFull:
		return true
	}
	return false
}

func (m Mode) IncludesStructure() bool {
	return m == ModeStructure || m == ModeFull
}

func (m Mode) IncludesData() bool {
	return m == ModeData || m == ModeFull
}

// SurveyDocument is the top-level shape of survey.json. OptionGroups only
// appears in legacy archives; fresh exports leave it empty.
type SurveyDocument struct {
	Version      string        `json:"version"`
	ExportedAt   string        `json:"exported_at"`
	Mode         Mode          `json:"mode"`
	Survey       SurveyData    `json:"survey"`
	OptionGroups []OptionGroup `json:"option_groups,omitempty"`
}

type SurveyData struct {
	Name               string            `json:"name"`
	Organization       string            `json:"organization,omitempty"`
	RedirectURL        string            `json:"redirect_url,omitempty"`
	AvailableLanguages []string          `json:"available_languages,omitempty"`
	ThanksHTML         map[string]string `json:"thanks_html,omitempty"`
	Sections           []SectionData     `json:"sections"`
}

// SectionData references neighbours by name. Row ids are never written to an
// archive: they are not portable across databases.
type SectionData struct {
	Name             string                   `json:"name"`
	Code             string                   `json:"code,omitempty"`
	Title            string                   `json:"title,omitempty"`
	Subheading       string                   `json:"subheading,omitempty"`
	IsHead           bool                     `json:"is_head"`
	NextSectionName  string                   `json:"next_section_name,omitempty"`
	PrevSectionName  string                   `json:"prev_section_name,omitempty"`
	StartMapPosition string                   `json:"start_map_position,omitempty"`
	Zoom             int                      `json:"zoom,omitempty"`
	Translations     []SectionTranslationData `json:"translations,omitempty"`
	Questions        []QuestionData           `json:"questions"`
}

type SectionTranslationData struct {
	Language   string `json:"language"`
	Title      string `json:"title,omitempty"`
	Subheading string `json:"subheading,omitempty"`
}

type QuestionData struct {
	Code            string                    `json:"code,omitempty"`
	InputType       string                    `json:"input_type"`
	Choices         []ChoiceData              `json:"choices,omitempty"`
	OptionGroupName string                    `json:"option_group_name,omitempty"`
	Translations    []QuestionTranslationData `json:"translations,omitempty"`
	SubQuestions    []QuestionData            `json:"sub_questions,omitempty"`
}

type QuestionTranslationData struct {
	Language string `json:"language"`
	Name     string `json:"name,omitempty"`
	Subtext  string `json:"subtext,omitempty"`
}

type ChoiceData struct {
	Code int              `json:"code"`
	Name model.ChoiceName `json:"name"`
}

// OptionGroup is the legacy shared choice list. Import upgrades it to inline
// choices; nothing else in the system ever sees this shape.
type OptionGroup struct {
	Name    string              `json:"name"`
	Choices []OptionGroupChoice `json:"choices"`
}

type OptionGroupChoice struct {
	Code         *int                           `json:"code,omitempty"`
	Name         string                         `json:"name"`
	Translations []OptionGroupChoiceTranslation `json:"translations,omitempty"`
}

type OptionGroupChoiceTranslation struct {
	Language string `json:"language"`
	Name     string `json:"name"`
}

// ResponsesDocument is the top-level shape of responses.json. SurveyName
// links a data-only archive to the survey it belongs to.
type ResponsesDocument struct {
	Version    string        `json:"version"`
	ExportedAt string        `json:"exported_at"`
	SurveyName string        `json:"survey_name"`
	Sessions   []SessionData `json:"sessions"`
}

type SessionData struct {
	StartedAt string       `json:"started_at,omitempty"`
	EndedAt   string       `json:"ended_at,omitempty"`
	Language  string       `json:"language,omitempty"`
	Answers   []AnswerData `json:"answers"`
}

// AnswerData carries choice selections as display names, not codes; the
// import resolver converts them back against the question's choice list.
type AnswerData struct {
	QuestionCode string       `json:"question_code"`
	Text         *string      `json:"text,omitempty"`
	Numeric      *float64     `json:"numeric,omitempty"`
	YN           *bool        `json:"yn,omitempty"`
	Geometry     string       `json:"geometry,omitempty"`
	Choices      []string     `json:"choices,omitempty"`
	SubAnswers   []AnswerData `json:"sub_answers,omitempty"`
}

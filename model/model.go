package model

import (
	"time"

	"github.com/paulmach/orb"
)

type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityDemo    Visibility = "demo"
	VisibilityPublic  Visibility = "public"
)

// MaxSectionCode is the storage limit for section codes. Longer incoming
// codes are truncated, never rejected.
const MaxSectionCode = 8

type Organization struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Survey struct {
	ID                 int64             `json:"id,omitempty"`
	UUID               string            `json:"uuid,omitempty"`
	Name               string            `json:"name"`
	OrganizationID     *int64            `json:"organization_id,omitempty"`
	RedirectURL        string            `json:"redirect_url,omitempty"`
	AvailableLanguages []string          `json:"available_languages,omitempty"`
	Visibility         Visibility        `json:"visibility"`
	Archived           bool              `json:"archived"`
	ThanksHTML         map[string]string `json:"thanks_html,omitempty"`
	CreatedBy          string            `json:"created_by,omitempty"`
}

// Section rows form a doubly-linked chain per survey, rooted at the single
// section with IsHead set.
type Section struct {
	ID               int64                `json:"id,omitempty"`
	SurveyID         int64                `json:"survey_id,omitempty"`
	Name             string               `json:"name"`
	Code             string               `json:"code"`
	Title            string               `json:"title,omitempty"`
	Subheading       string               `json:"subheading,omitempty"`
	IsHead           bool                 `json:"is_head"`
	NextSectionID    *int64               `json:"next_section_id,omitempty"`
	PrevSectionID    *int64               `json:"prev_section_id,omitempty"`
	StartMapPosition *orb.Point           `json:"start_map_position,omitempty"`
	Zoom             int                  `json:"zoom,omitempty"`
	Translations     []SectionTranslation `json:"translations,omitempty"`
}

type SectionTranslation struct {
	Language   string `json:"language"`
	Title      string `json:"title,omitempty"`
	Subheading string `json:"subheading,omitempty"`
}

type Question struct {
	ID               int64                 `json:"id,omitempty"`
	SectionID        int64                 `json:"section_id,omitempty"`
	ParentQuestionID *int64                `json:"parent_question_id,omitempty"`
	Code             string                `json:"code"`
	OrderNumber      int                   `json:"order_number"`
	InputType        InputType             `json:"input_type"`
	Choices          []Choice              `json:"choices,omitempty"`
	Translations     []QuestionTranslation `json:"translations,omitempty"`
}

type QuestionTranslation struct {
	Language string `json:"language"`
	Name     string `json:"name,omitempty"`
	Subtext  string `json:"subtext,omitempty"`
}

type Choice struct {
	Code int        `json:"code"`
	Name ChoiceName `json:"name"`
}

type Session struct {
	ID        int64      `json:"id,omitempty"`
	SurveyID  int64      `json:"survey_id,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Language  string     `json:"language,omitempty"`
}

// Answer carries exactly one populated value, matching its question's input
// type: Numeric, Text, YN, Geometry or SelectedChoices.
type Answer struct {
	ID              int64        `json:"id,omitempty"`
	SessionID       int64        `json:"session_id,omitempty"`
	QuestionID      int64        `json:"question_id"`
	ParentAnswerID  *int64       `json:"parent_answer_id,omitempty"`
	Numeric         *float64     `json:"numeric,omitempty"`
	Text            *string      `json:"text,omitempty"`
	YN              *bool        `json:"yn,omitempty"`
	Geometry        orb.Geometry `json:"-"`
	SelectedChoices []int        `json:"selected_choices,omitempty"`
}

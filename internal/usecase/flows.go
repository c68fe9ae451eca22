package usecase

import (
	"fmt"
	"time"

	"github.com/wwwizards/leadflow/internal/entity"
)

type StepKind string

const (
	StepChoice StepKind = "choice"
	StepText   StepKind = "text"
)

// Step is one question of a questionnaire: a stable id the answer is
// stored under, a prompt, and for choice steps the full option set.
type Step struct {
	ID      string
	Prompt  string
	Kind    StepKind
	Options []string
}

func (s Step) Accepts(input string) bool {
	if s.Kind == StepText {
		return true
	}
	for _, opt := range s.Options {
		if opt == input {
			return true
		}
	}
	return false
}

// Flow is a fixed ordered questionnaire. Flows never change after startup.
type Flow struct {
	Name  string
	Steps []Step
}

// Built-in flow names.
const (
	FlowOrderQuiz  = "order_quiz"
	FlowNewRequest = "new_request"
)

// Service type options.
const (
	ServiceCorporate = "corporate"
	ServiceLanding   = "landing"
	ServiceShop      = "shop"
	ServiceCatalog   = "catalog"
	ServiceRedesign  = "redesign"
	ServiceSupport   = "support"
)

// Budget range options.
const (
	BudgetUnder100K = "under_100k"
	Budget100K300K  = "between_100k_300k"
	Budget300K500K  = "between_300k_500k"
	Budget500K1M    = "between_500k_1m"
	BudgetOver1M    = "over_1m"
)

// Timeline options.
const (
	TimelineWithinMonth = "within_month"
	TimelineOneTwo      = "one_to_two_months"
	TimelineTwoThree    = "two_to_three_months"
	TimelineThreeSix    = "three_to_six_months"
	TimelineNoRush      = "no_rush"
)

// OrderQuizFlow is the full project questionnaire: three choice steps
// followed by five free-text contact steps.
func OrderQuizFlow() Flow {
	return Flow{
		Name: FlowOrderQuiz,
		Steps: []Step{
			{
				ID:     "service_type",
				Prompt: "What kind of website do you need?",
				Kind:   StepChoice,
				Options: []string{
					ServiceCorporate, ServiceLanding, ServiceShop,
					ServiceCatalog, ServiceRedesign, ServiceSupport,
				},
			},
			{
				ID:     "budget",
				Prompt: "What is your project budget?",
				Kind:   StepChoice,
				Options: []string{
					BudgetUnder100K, Budget100K300K, Budget300K500K,
					Budget500K1M, BudgetOver1M,
				},
			},
			{
				ID:     "timeline",
				Prompt: "When do you need the project delivered?",
				Kind:   StepChoice,
				Options: []string{
					TimelineWithinMonth, TimelineOneTwo, TimelineTwoThree,
					TimelineThreeSix, TimelineNoRush,
				},
			},
			{ID: "company_name", Prompt: "What is your company name?", Kind: StepText},
			{ID: "contact_name", Prompt: "Who should we contact?", Kind: StepText},
			{ID: "contact_phone", Prompt: "What is the best phone number to reach you?", Kind: StepText},
			{ID: "contact_email", Prompt: "What is your email address?", Kind: StepText},
			{ID: "additional_info", Prompt: "Anything else we should know about the project?", Kind: StepText},
		},
	}
}

// NewRequestFlow is the short linear intake used from the services menu.
func NewRequestFlow() Flow {
	return Flow{
		Name: FlowNewRequest,
		Steps: []Step{
			{ID: "first_name", Prompt: "Enter your first name", Kind: StepText},
			{ID: "last_name", Prompt: "Enter your last name", Kind: StepText},
			{ID: "contact_email", Prompt: "Enter your email address", Kind: StepText},
			{ID: "additional_info", Prompt: "Describe what you need", Kind: StepText},
		},
	}
}

// PromptFor renders the outbound prompt for one step, numbered within its flow.
func (f Flow) PromptFor(index int) entity.Reply {
	step := f.Steps[index]
	text := fmt.Sprintf("Question %d of %d\n\n%s", index+1, len(f.Steps), step.Prompt)
	if step.Kind == StepText {
		text += "\n\nType your answer:"
	}
	return entity.Reply{Text: text, Options: step.Options}
}

// BuildLead maps collected answers onto a Lead. Missing keys become empty
// strings, matching how incomplete flows were stored historically.
func BuildLead(ev entity.Event, answers map[string]string, now time.Time) *entity.Lead {
	firstName := ev.FirstName
	if v, ok := answers["first_name"]; ok {
		firstName = v
	}
	lastName := ev.LastName
	if v, ok := answers["last_name"]; ok {
		lastName = v
	}
	return &entity.Lead{
		UserID:         ev.UserID,
		Username:       ev.Username,
		FirstName:      firstName,
		LastName:       lastName,
		ServiceType:    answers["service_type"],
		Budget:         answers["budget"],
		Timeline:       answers["timeline"],
		CompanyName:    answers["company_name"],
		ContactName:    answers["contact_name"],
		ContactPhone:   answers["contact_phone"],
		ContactEmail:   answers["contact_email"],
		AdditionalInfo: answers["additional_info"],
		Status:         entity.StatusNew,
		CreatedAt:      now,
	}
}

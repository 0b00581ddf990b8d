package flow

import "github.com/xiaot623/anketa/internal/domain"

// inputKind is what a state waits for.
type inputKind int

const (
	inputChoice       inputKind = iota // structured selection only
	inputChoiceOrText                  // selection, or free text normalized to the same answer
	inputText
	inputPhone
	inputDate
	inputVoice
	inputVideo
)

// edge is a transition. A non-empty relay is sent as the next prompt on
// the way, passing through the relay state.
type edge struct {
	to    domain.State
	relay domain.MediaKey
	via   domain.State
}

// step is one answer-bearing state.
type step struct {
	state   domain.State
	label   string
	input   inputKind
	choice  domain.SelectionKind
	options []string
	ack     string

	prompt   string
	keyboard *domain.Keyboard

	// next.to == "" means the submission is complete.
	next edge
}

func (s *step) accepts(value string) bool {
	for _, o := range s.options {
		if o == value {
			return true
		}
	}
	return false
}

// buildSteps returns the transition table keyed by state.
func buildSteps(jobTypes []string) map[domain.State]*step {
	q := func(state domain.State, n int, label string, input inputKind, next domain.State) *step {
		return &step{state: state, label: label, input: input, prompt: Prompts[n-1], next: edge{to: next}}
	}

	category := &step{
		state:    domain.StateSelectCategory,
		label:    domain.LabelCategory,
		input:    inputChoice,
		choice:   domain.SelectionCategory,
		options:  jobTypes,
		ack:      AckSelected,
		prompt:   MenuText,
		keyboard: CategoryKeyboard(jobTypes),
		next:     edge{to: domain.StateQ1},
	}

	q1 := q(domain.StateQ1, 1, domain.LabelName, inputText, domain.StateQ2)
	q2 := q(domain.StateQ2, 2, domain.LabelPhone, inputPhone, domain.StateQ3)
	q2.keyboard = ContactKeyboard()
	q3 := q(domain.StateQ3, 3, domain.LabelAddress, inputText, domain.StateQ4)
	q3.keyboard = RemoveKeyboard()
	q4 := q(domain.StateQ4, 4, domain.LabelBirthDate, inputDate, domain.StateQ5)
	q5 := q(domain.StateQ5, 5, domain.LabelEducation, inputChoiceOrText, domain.StateQ6)
	q5.choice, q5.options, q5.ack = domain.SelectionEducation, EducationOptions, AckSelected
	q5.keyboard = columnKeyboard(domain.SelectionEducation, EducationOptions)
	q6 := q(domain.StateQ6, 6, domain.LabelExperience, inputText, domain.StateQ7)
	q6.keyboard = RemoveKeyboard()
	q7 := q(domain.StateQ7, 7, domain.LabelMarital, inputChoiceOrText, domain.StateQ9)
	q7.choice, q7.options, q7.ack = domain.SelectionMarital, MaritalOptions, AckSelected
	q7.keyboard = columnKeyboard(domain.SelectionMarital, MaritalOptions)
	q7.next = edge{to: domain.StateQ9, relay: domain.MediaVoicePrompt, via: domain.StateQ8}
	q9 := q(domain.StateQ9, 9, domain.LabelVoice, inputVoice, domain.StateQ10)
	q10 := q(domain.StateQ10, 10, domain.LabelRussian, inputChoiceOrText, domain.StateQ11)
	q10.choice, q10.options, q10.ack = domain.SelectionRussianLevel, RussianOptions, AckSelected
	q10.keyboard = columnKeyboard(domain.SelectionRussianLevel, RussianOptions)
	q10.next = edge{to: domain.StateQ11, relay: domain.MediaVideoPrompt}
	q11 := q(domain.StateQ11, 11, domain.LabelVideo, inputVideo, domain.StateQ12)
	q12 := q(domain.StateQ12, 12, domain.LabelConsent, inputChoice, domain.StateQ13)
	q12.choice, q12.options, q12.ack = domain.SelectionConsent, ConsentOptions, AckAccepted
	q12.keyboard = consentKeyboard()
	q13 := q(domain.StateQ13, 13, domain.LabelReferee, inputText, domain.StateQ14)
	q13.keyboard = RemoveKeyboard()

	steps := []*step{
		category, q1, q2, q3, q4, q5, q6, q7, q9, q10, q11, q12, q13,
		q(domain.StateQ14, 14, domain.LabelTenure, inputText, domain.StateQ15),
		q(domain.StateQ15, 15, domain.LabelOvertime, inputText, domain.StateQ16),
		q(domain.StateQ16, 16, domain.LabelHealth, inputText, domain.StateQ17),
		q(domain.StateQ17, 17, domain.LabelLateness, inputText, domain.StateQ18),
		q(domain.StateQ18, 18, domain.LabelTheft, inputText, domain.StateQ19),
		q(domain.StateQ19, 19, domain.LabelWorkQuality, inputText, domain.StateQ20),
		q(domain.StateQ20, 20, domain.LabelPrevSalary, inputText, domain.StateQ21),
		q(domain.StateQ21, 21, domain.LabelWantSalary, inputText, domain.StateQ22),
		q(domain.StateQ22, 22, domain.LabelCourses, inputText, ""),
	}

	out := make(map[domain.State]*step, len(steps))
	for _, s := range steps {
		out[s.state] = s
	}
	return out
}

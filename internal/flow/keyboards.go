package flow

import "github.com/xiaot623/anketa/internal/domain"

// CategoryKeyboard lays job types out two per row.
func CategoryKeyboard(jobTypes []string) *domain.Keyboard {
	kb := &domain.Keyboard{Kind: domain.KeyboardInline}
	var row []domain.Button
	for _, t := range jobTypes {
		row = append(row, selectButton(t, domain.SelectionCategory, t))
		if len(row) == 2 {
			kb.Rows = append(kb.Rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb.Rows = append(kb.Rows, row)
	}
	return kb
}

// columnKeyboard puts each option on its own row.
func columnKeyboard(kind domain.SelectionKind, options []string) *domain.Keyboard {
	kb := &domain.Keyboard{Kind: domain.KeyboardInline}
	for _, o := range options {
		kb.Rows = append(kb.Rows, []domain.Button{selectButton(o, kind, o)})
	}
	return kb
}

func consentKeyboard() *domain.Keyboard {
	return &domain.Keyboard{
		Kind: domain.KeyboardInline,
		Rows: [][]domain.Button{{
			selectButton("ha", domain.SelectionConsent, "ha"),
			selectButton("yo'q", domain.SelectionConsent, "yoq"),
		}},
	}
}

// ContactKeyboard asks the client to share its phone number.
func ContactKeyboard() *domain.Keyboard {
	return &domain.Keyboard{
		Kind: domain.KeyboardContact,
		Rows: [][]domain.Button{{{Text: ContactButton}}},
	}
}

// RemoveKeyboard clears a previously shown reply keyboard.
func RemoveKeyboard() *domain.Keyboard {
	return &domain.Keyboard{Kind: domain.KeyboardRemove}
}

func selectButton(text string, kind domain.SelectionKind, value string) domain.Button {
	return domain.Button{Text: text, Data: domain.Selection{Kind: kind, Value: value}.Data()}
}

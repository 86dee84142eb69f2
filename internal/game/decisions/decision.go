// Package decisions describes the questions the engine asks players and
// validates their answers.
package decisions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidDecision is returned when an answer does not match the open
// decision.
var ErrInvalidDecision = errors.New("invalid decision")

// Kind is the type of a decision.
type Kind string

const (
	KindMultipleChoice Kind = "MULTIPLE_CHOICE"
	KindYesNo          Kind = "YES_NO"
	KindCardSelection  Kind = "CARD_SELECTION"
	KindActionChoice   Kind = "ACTION_CHOICE"
	KindInteger        Kind = "INTEGER"
)

// Answer values shared by several decision kinds.
const (
	Yes  = "yes"
	No   = "no"
	Pass = "pass"
)

// Option is one selectable answer.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Decision is a question awaiting a single player's answer.
type Decision struct {
	ID       string   `json:"id"`
	PlayerID string   `json:"player_id"`
	Kind     Kind     `json:"kind"`
	Text     string   `json:"text"`
	Options  []Option `json:"options,omitempty"`
	Min      int      `json:"min"`
	Max      int      `json:"max"`
}

func newDecision(playerID string, kind Kind, text string) *Decision {
	return &Decision{
		ID:       uuid.NewString(),
		PlayerID: playerID,
		Kind:     kind,
		Text:     text,
	}
}

// MultipleChoice asks the player to pick one of the labels.
func MultipleChoice(playerID, text string, options []Option) *Decision {
	d := newDecision(playerID, KindMultipleChoice, text)
	d.Options = options
	d.Min, d.Max = 1, 1
	return d
}

// YesNo asks a yes or no question.
func YesNo(playerID, text string) *Decision {
	d := newDecision(playerID, KindYesNo, text)
	d.Options = []Option{{Value: Yes, Label: "Yes"}, {Value: No, Label: "No"}}
	d.Min, d.Max = 1, 1
	return d
}

// CardSelection asks for between min and max of the offered cards.
func CardSelection(playerID, text string, cards []Option, min, max int) *Decision {
	d := newDecision(playerID, KindCardSelection, text)
	d.Options = cards
	d.Min, d.Max = min, max
	return d
}

// ActionChoice asks the player to choose an action by its label or pass.
// Options are identified by their position.
func ActionChoice(playerID, text string, labels []string) *Decision {
	d := newDecision(playerID, KindActionChoice, text)
	d.Options = make([]Option, 0, len(labels)+1)
	for i, label := range labels {
		d.Options = append(d.Options, Option{Value: strconv.Itoa(i), Label: label})
	}
	d.Options = append(d.Options, Option{Value: Pass, Label: "Pass"})
	d.Min, d.Max = 1, 1
	return d
}

// Integer asks for a number between min and max inclusive.
func Integer(playerID, text string, min, max int) *Decision {
	d := newDecision(playerID, KindInteger, text)
	d.Min, d.Max = min, max
	return d
}

// Labels returns the option labels in order.
func (d *Decision) Labels() []string {
	labels := make([]string, len(d.Options))
	for i, o := range d.Options {
		labels[i] = o.Label
	}
	return labels
}

func (d *Decision) hasOption(value string) bool {
	for _, o := range d.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// Validate checks an answer against the decision and returns the selected
// values. Card selections take a comma separated list.
func (d *Decision) Validate(answer string) ([]string, error) {
	answer = strings.TrimSpace(answer)
	switch d.Kind {
	case KindInteger:
		n, err := strconv.Atoi(answer)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidDecision, answer)
		}
		if n < d.Min || n > d.Max {
			return nil, fmt.Errorf("%w: %d is outside %d..%d", ErrInvalidDecision, n, d.Min, d.Max)
		}
		return []string{strconv.Itoa(n)}, nil
	case KindCardSelection:
		var values []string
		if answer != "" {
			values = strings.Split(answer, ",")
		}
		seen := make(map[string]struct{}, len(values))
		for i, v := range values {
			v = strings.TrimSpace(v)
			values[i] = v
			if !d.hasOption(v) {
				return nil, fmt.Errorf("%w: %q is not selectable", ErrInvalidDecision, v)
			}
			if _, dup := seen[v]; dup {
				return nil, fmt.Errorf("%w: %q selected twice", ErrInvalidDecision, v)
			}
			seen[v] = struct{}{}
		}
		if len(values) < d.Min || len(values) > d.Max {
			return nil, fmt.Errorf("%w: select between %d and %d cards", ErrInvalidDecision, d.Min, d.Max)
		}
		return values, nil
	default:
		if !d.hasOption(answer) {
			return nil, fmt.Errorf("%w: %q is not one of the options", ErrInvalidDecision, answer)
		}
		return []string{answer}, nil
	}
}

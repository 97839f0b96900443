package dataset

import (
	"fmt"
	"strings"
)

// Outcome is the three-valued readmission label derived from the raw code.
type Outcome uint8

const (
	OutcomeNone Outcome = iota // raw value missing or unrecognized
	OutcomeUp
	OutcomeDown
	OutcomeNo
)

// Outcomes lists the labels in reporting order.
var Outcomes = []Outcome{OutcomeUp, OutcomeDown, OutcomeNo}

func (o Outcome) String() string {
	switch o {
	case OutcomeUp:
		return "Up"
	case OutcomeDown:
		return "Down"
	case OutcomeNo:
		return "No"
	default:
		return ""
	}
}

// ParseOutcome converts a label name ("Up", "Down", "No") to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return OutcomeUp, nil
	case "down":
		return OutcomeDown, nil
	case "no":
		return OutcomeNo, nil
	}
	return OutcomeNone, fmt.Errorf("unknown outcome label %q (use Up, Down or No)", s)
}

// DefaultOutcomeMapping maps readmission codes: >30 days, <30 days, not readmitted.
func DefaultOutcomeMapping() map[string]Outcome {
	return map[string]Outcome{
		">30": OutcomeUp,
		"<30": OutcomeDown,
		"NO":  OutcomeNo,
	}
}

// ParseOutcomeMapping converts "code=Label" pairs (as stored in config) to an Outcome mapping.
// Codes are kept verbatim; an empty list yields DefaultOutcomeMapping.
func ParseOutcomeMapping(pairs []string) (map[string]Outcome, error) {
	if len(pairs) == 0 {
		return DefaultOutcomeMapping(), nil
	}
	out := make(map[string]Outcome, len(pairs))
	for _, p := range pairs {
		code, label, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid outcome mapping %q (want code=Label)", p)
		}
		o, err := ParseOutcome(label)
		if err != nil {
			return nil, fmt.Errorf("outcome mapping for %q: %w", code, err)
		}
		out[strings.TrimSpace(code)] = o
	}
	return out, nil
}

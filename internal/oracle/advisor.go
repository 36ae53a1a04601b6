package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wayfarer-sim/wayfarer/internal/clock"
	"github.com/wayfarer-sim/wayfarer/internal/network"
	"github.com/wayfarer-sim/wayfarer/internal/route"
)

// Persona is the identity the oracle answers as.
type Persona struct {
	Name        string
	Home        string
	Description string
}

// PlanAction is one parsed line of a day plan.
type PlanAction struct {
	Time   clock.Clock
	Action string
}

// Candidate is one annotated route option presented for choice. Known
// candidates carry remembered statistics; unknown ones carry a network
// estimate.
type Candidate struct {
	Mode          route.Mode
	EstimatedTime float64 // minutes, network estimate incl. mode extra time
	Known         bool
	Count         int
	MeanTime      float64
	MeanComfort   float64 // active modes only
	HasComfort    bool
}

// Advisor covers the engine's four oracle call sites. A nil or failing
// responder degrades to deterministic fallbacks; the engine never depends on
// oracle availability for correctness.
type Advisor struct {
	responder Responder
}

// NewAdvisor creates an advisor over the given responder. responder may be nil.
func NewAdvisor(r Responder) *Advisor {
	return &Advisor{responder: r}
}

func (a *Advisor) respond(ctx context.Context, system, prompt string) (string, error) {
	if a.responder == nil {
		return "", fmt.Errorf("no oracle responder configured")
	}
	return a.responder.Respond(ctx, system, prompt)
}

func systemPrompt(p Persona) string {
	return fmt.Sprintf(
		`You are %s. You live at %s. %s
You answer as this person, making everyday decisions about where to go and how to travel.`,
		p.Name, p.Home, p.Description,
	)
}

// PlanDay asks for a freeform day plan and parses it into ordered actions.
// Lines without an HH:MM prefix are discarded silently; a malformed plan
// degrades to fewer actions, not an error. When the oracle is unavailable the
// fallback is a fixed stay-local routine.
func (a *Advisor) PlanDay(ctx context.Context, p Persona) []PlanAction {
	prompt := fmt.Sprintf(
		`Write %s's plan for today as a list of actions, one per line, each starting
with a 24-hour time. For example:
08:00 have breakfast at home
09:30 go to work
Keep it to everyday activities that fit this person.`,
		p.Name,
	)

	text, err := a.respond(ctx, systemPrompt(p), prompt)
	if err != nil {
		slog.Warn("day plan oracle unavailable, using fallback plan", "person", p.Name, "error", err)
		text = fallbackPlan
	}
	plan := ParsePlan(text)
	if len(plan) == 0 {
		slog.Warn("day plan had no parseable actions", "person", p.Name)
	}
	return plan
}

// fallbackPlan is the deterministic day used when no oracle is reachable.
const fallbackPlan = `08:30 go to work
12:30 get lunch
13:30 go back to work
17:30 go home`

// ActionLocation asks where to perform an action, given the known location
// names. It returns the raw (trimmed) name; the caller checks validity and
// retries within its own bound.
func (a *Advisor) ActionLocation(ctx context.Context, p Persona, current, action string, locations []string) (string, error) {
	prompt := fmt.Sprintf(
		`%s is currently at %s and wants to do the following: %s
The places they know are: %s.
Answer with the single best place name from that list, and nothing else.`,
		p.Name, current, action, strings.Join(locations, ", "),
	)

	text, err := a.respond(ctx, systemPrompt(p), prompt)
	if err != nil {
		// Fallback: a location whose name relates to the action, if any.
		if guess := matchLocation(action, locations); guess != "" {
			return guess, nil
		}
		return "", err
	}
	return strings.Trim(strings.TrimSpace(text), `"'.`), nil
}

// matchLocation is the offline destination heuristic: first known location
// sharing a word with the action text.
func matchLocation(action string, locations []string) string {
	lower := strings.ToLower(action)
	for _, loc := range locations {
		for _, word := range strings.Fields(strings.ToLower(loc)) {
			if strings.Contains(lower, word) {
				return loc
			}
		}
	}
	return ""
}

// ChooseRoute presents the annotated candidates and returns the chosen index
// plus the oracle's justification. The returned index is always valid: an
// out-of-range or unparseable answer falls back to candidate 0 (the cheapest
// of the first mode listed) with a warning.
func (a *Advisor) ChooseRoute(ctx context.Context, p Persona, origin, destination string, candidates []Candidate) (int, string) {
	if len(candidates) == 0 {
		return 0, ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s needs to travel from %s to %s. The options are:\n\n", p.Name, origin, destination)
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s, estimated %.1f minutes", i, c.Mode, c.EstimatedTime)
		if c.Known {
			fmt.Fprintf(&b, " (taken %d times before, averaging %.1f minutes", c.Count, c.MeanTime)
			if c.HasComfort {
				fmt.Fprintf(&b, ", comfort %.1f/10", c.MeanComfort)
			}
			b.WriteString(")")
		} else {
			b.WriteString(" (never taken before)")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nAnswer with the number of the chosen option on the first line, then a one-sentence justification.")

	text, err := a.respond(ctx, systemPrompt(p), b.String())
	if err != nil {
		slog.Warn("route choice oracle unavailable, taking cheapest candidate", "person", p.Name, "error", err)
		return 0, "cheapest option (oracle unavailable)"
	}

	idx, justification, ok := ParseChoice(text)
	if !ok {
		slog.Warn("route choice had no parseable index, taking cheapest candidate", "person", p.Name)
		return 0, strings.TrimSpace(text)
	}
	if idx < 0 || idx >= len(candidates) {
		slog.Warn("route choice index out of range, clamping to cheapest candidate",
			"person", p.Name, "index", idx, "candidates", len(candidates))
		idx = 0
	}
	return idx, justification
}

// RateComfort asks for a 1–10 comfort rating of a road type for an active
// mode. Unparseable answers, or an unavailable oracle, fall back to a neutral
// 5 with a warning.
func (a *Advisor) RateComfort(ctx context.Context, p Persona, rt network.RoadType, mode route.Mode) int {
	highway := rt.Highway
	if highway == "" {
		highway = "unclassified road"
	}
	limit := rt.MaxSpeed
	if limit == "" {
		limit = "no posted limit"
	}
	prompt := fmt.Sprintf(
		`How comfortable would %s find travelling by %s on this kind of road?
Road type: %s. Speed limit: %s.
Answer with a single whole number from 1 (very uncomfortable) to 10 (very comfortable), and nothing else.`,
		p.Name, mode, highway, limit,
	)

	text, err := a.respond(ctx, systemPrompt(p), prompt)
	if err != nil {
		slog.Warn("comfort oracle unavailable, using neutral score", "person", p.Name, "error", err)
		return neutralComfort
	}
	score, ok := ParseComfort(text)
	if !ok {
		slog.Warn("comfort rating not parseable, using neutral score", "person", p.Name, "response", text)
		return neutralComfort
	}
	return score
}

const neutralComfort = 5

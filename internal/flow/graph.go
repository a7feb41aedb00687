package flow

import "fmt"

// rule is a single conditional branch: when the named field equals the given
// value, the transition goes to the target step.
type rule struct {
	field  Field
	equals string
	to     Step
}

// transition resolves the step that follows the current one. Rules are
// evaluated in order, first match wins; fallback applies when none match.
// The terminal step has neither rules nor fallback.
type transition struct {
	rules    []rule
	fallback Step
}

// stepSpec declares what a step accepts and which field it writes.
type stepSpec struct {
	kind    EventKind
	field   Field    // field written by a plain text answer; empty for photos/confirm
	options []string // non-empty -> only an exact option match is accepted
	next    transition
}

// Graph is the immutable wizard definition shared by all sessions. Transitions
// are a pure function of the current step and the collected answers.
type Graph struct {
	first Step
	steps map[Step]stepSpec
}

// NewGraph builds the report wizard graph.
func NewGraph() *Graph {
	steps := map[Step]stepSpec{
		StepWaterbody: {
			kind:    EventText,
			field:   FieldWaterbody,
			options: WaterbodyNames(),
			next:    transition{fallback: StepCoordinates},
		},
		StepCoordinates: {
			kind:  EventText,
			field: FieldCoordinates,
			next:  transition{fallback: StepTackle},
		},
		StepTackle: {
			kind:    EventText,
			field:   FieldTackle,
			options: Tackles,
			next: transition{
				rules:    []rule{{FieldTackle, TackleMakh, StepDepth}},
				fallback: StepClip,
			},
		},
		StepClip: {
			kind:  EventText,
			field: FieldClip,
			next: transition{
				rules: []rule{
					{FieldTackle, TackleMatch, StepDepth},
					{FieldWaterbody, WaterbodyMednoye, StepTemperature},
				},
				fallback: StepCommentChoice,
			},
		},
		StepDepth: {
			kind:  EventText,
			field: FieldDepth,
			next: transition{
				rules:    []rule{{FieldWaterbody, WaterbodyMednoye, StepTemperature}},
				fallback: StepCommentChoice,
			},
		},
		StepTemperature: {
			kind:  EventText,
			field: FieldTemperature,
			next:  transition{fallback: StepCommentChoice},
		},
		StepCommentChoice: {
			kind:    EventText,
			field:   FieldCommentChoice,
			options: []string{LabelAddComment, LabelSkipComment},
			next: transition{
				rules:    []rule{{FieldCommentChoice, LabelAddComment, StepComment}},
				fallback: StepNickname,
			},
		},
		StepComment: {
			kind:  EventText,
			field: FieldComment,
			next:  transition{fallback: StepNickname},
		},
		StepNickname: {
			kind:  EventText,
			field: FieldNickname,
			next:  transition{fallback: StepPhotos},
		},
		StepPhotos: {
			kind: EventPhoto,
			next: transition{fallback: StepConfirm},
		},
		StepConfirm: {
			kind:    EventText,
			options: []string{LabelSubmit, LabelEdit, LabelCancel},
		},
	}
	return &Graph{first: StepWaterbody, steps: steps}
}

// First returns the entry step of the wizard.
func (g *Graph) First() Step {
	return g.first
}

// Contains reports whether the step belongs to the graph.
func (g *Graph) Contains(s Step) bool {
	_, ok := g.steps[s]
	return ok
}

// Terminal reports whether the step ends the wizard.
func (g *Graph) Terminal(s Step) bool {
	spec, ok := g.steps[s]
	if !ok {
		return false
	}
	return len(spec.next.rules) == 0 && spec.next.fallback == ""
}

// Field returns the field written by the step, if any.
func (g *Graph) Field(s Step) (Field, bool) {
	spec, ok := g.steps[s]
	if !ok || spec.field == "" {
		return "", false
	}
	return spec.field, true
}

// Options returns the fixed option set of a choice step; nil for free input.
func (g *Graph) Options(s Step) []string {
	return g.steps[s].options
}

// Accepts reports whether an event kind (and, for choice steps, its exact
// text) is admissible at the given step. The photos step additionally accepts
// its completion label.
func (g *Graph) Accepts(s Step, ev Event) bool {
	spec, ok := g.steps[s]
	if !ok {
		return false
	}
	if s == StepPhotos {
		return ev.Kind == EventPhoto || (ev.Kind == EventText && ev.Text == LabelPhotosDone)
	}
	if ev.Kind != spec.kind {
		return false
	}
	if len(spec.options) == 0 {
		return true
	}
	for _, opt := range spec.options {
		if ev.Text == opt {
			return true
		}
	}
	return false
}

// Next resolves the step that follows s given the answers collected so far.
// It is a pure function: identical inputs always yield the identical step.
func (g *Graph) Next(s Step, a Answers) (Step, error) {
	spec, ok := g.steps[s]
	if !ok {
		return "", fmt.Errorf("flow: unknown step %q", s)
	}
	for _, r := range spec.next.rules {
		if a[r.field] == r.equals {
			return r.to, nil
		}
	}
	if spec.next.fallback == "" {
		return "", fmt.Errorf("flow: no transition from step %q", s)
	}
	return spec.next.fallback, nil
}

// Validate checks the graph at startup: the first step exists, every branch
// target exists, every non-terminal step has a total transition (a fallback
// guarantees coverage for any answer set), and every step is reachable from
// the first. A failure here is a configuration error and must abort startup.
func (g *Graph) Validate() error {
	if _, ok := g.steps[g.first]; !ok {
		return fmt.Errorf("flow: first step %q is not defined", g.first)
	}

	terminals := 0
	for s, spec := range g.steps {
		if g.Terminal(s) {
			terminals++
			continue
		}
		if spec.next.fallback == "" {
			return fmt.Errorf("flow: step %q has branch rules but no fallback; transition is not total", s)
		}
		for _, r := range spec.next.rules {
			if _, ok := g.steps[r.to]; !ok {
				return fmt.Errorf("flow: step %q branches to unknown step %q", s, r.to)
			}
			if r.field == "" {
				return fmt.Errorf("flow: step %q has a branch rule without a field", s)
			}
		}
		if _, ok := g.steps[spec.next.fallback]; !ok {
			return fmt.Errorf("flow: step %q falls back to unknown step %q", s, spec.next.fallback)
		}
	}
	if terminals == 0 {
		return fmt.Errorf("flow: graph has no terminal step")
	}

	// Reachability over all rule targets and fallbacks.
	seen := map[Step]bool{g.first: true}
	queue := []Step{g.first}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		spec := g.steps[s]
		targets := make([]Step, 0, len(spec.next.rules)+1)
		for _, r := range spec.next.rules {
			targets = append(targets, r.to)
		}
		if spec.next.fallback != "" {
			targets = append(targets, spec.next.fallback)
		}
		for _, t := range targets {
			if !seen[t] {
				seen[t] = true
				queue = append(queue, t)
			}
		}
	}
	for s := range g.steps {
		if !seen[s] {
			return fmt.Errorf("flow: step %q is unreachable from %q", s, g.first)
		}
	}
	return nil
}

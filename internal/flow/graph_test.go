package flow

import "testing"

func TestGraphValidate(t *testing.T) {
	g := NewGraph()
	if err := g.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if g.First() != StepWaterbody {
		t.Fatalf("first step = %s", g.First())
	}
	if !g.Terminal(StepConfirm) {
		t.Fatal("confirm must be terminal")
	}
}

func TestGraphValidateRejectsBrokenGraphs(t *testing.T) {
	missingFallback := &Graph{
		first: "a",
		steps: map[Step]stepSpec{
			"a": {kind: EventText, next: transition{rules: []rule{{"f", "x", "b"}}}},
			"b": {kind: EventText},
		},
	}
	if err := missingFallback.Validate(); err == nil {
		t.Fatal("expected error for non-total transition")
	}

	unknownTarget := &Graph{
		first: "a",
		steps: map[Step]stepSpec{
			"a": {kind: EventText, next: transition{fallback: "ghost"}},
		},
	}
	if err := unknownTarget.Validate(); err == nil {
		t.Fatal("expected error for unknown fallback target")
	}

	unreachable := &Graph{
		first: "a",
		steps: map[Step]stepSpec{
			"a": {kind: EventText, next: transition{fallback: "b"}},
			"b": {kind: EventText},
			"c": {kind: EventText, next: transition{fallback: "b"}},
		},
	}
	if err := unreachable.Validate(); err == nil {
		t.Fatal("expected error for unreachable step")
	}
}

func TestTackleBranching(t *testing.T) {
	g := NewGraph()

	next, err := g.Next(StepTackle, Answers{FieldTackle: "Мах"})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next != StepDepth {
		t.Fatalf("Мах should skip clip, got %s", next)
	}

	next, err = g.Next(StepTackle, Answers{FieldTackle: "Спиннинг"})
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next != StepClip {
		t.Fatalf("Спиннинг should go to clip, got %s", next)
	}
}

func TestClipBranching(t *testing.T) {
	g := NewGraph()

	next, _ := g.Next(StepClip, Answers{FieldTackle: "Матч"})
	if next != StepDepth {
		t.Fatalf("Матч needs depth after clip, got %s", next)
	}

	next, _ = g.Next(StepClip, Answers{FieldTackle: "Донка", FieldWaterbody: "оз.Медное"})
	if next != StepTemperature {
		t.Fatalf("Медное asks for temperature, got %s", next)
	}

	next, _ = g.Next(StepClip, Answers{FieldTackle: "Донка", FieldWaterbody: "р.Белая"})
	if next != StepCommentChoice {
		t.Fatalf("expected comment choice, got %s", next)
	}
}

func TestDepthBranchesOnWaterbody(t *testing.T) {
	g := NewGraph()

	next, _ := g.Next(StepDepth, Answers{FieldWaterbody: "оз.Медное"})
	if next != StepTemperature {
		t.Fatalf("expected temperature, got %s", next)
	}
	next, _ = g.Next(StepDepth, Answers{FieldWaterbody: "р.Волхов"})
	if next != StepCommentChoice {
		t.Fatalf("expected comment choice, got %s", next)
	}
}

func TestNextIsDeterministic(t *testing.T) {
	g := NewGraph()
	answers := Answers{FieldTackle: "Спиннинг", FieldWaterbody: "р.Сура"}
	first, err := g.Next(StepTackle, answers)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := g.Next(StepTackle, answers)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if again != first {
			t.Fatalf("transition not deterministic: %s vs %s", first, again)
		}
	}
}

func TestAccepts(t *testing.T) {
	g := NewGraph()

	if g.Accepts(StepCoordinates, PhotoEvent("x")) {
		t.Fatal("text step must reject photos")
	}
	if !g.Accepts(StepCoordinates, TextEvent("55.7,37.6")) {
		t.Fatal("text step must accept text")
	}
	if g.Accepts(StepTackle, TextEvent("удочка")) {
		t.Fatal("choice step must reject unlisted options")
	}
	if !g.Accepts(StepTackle, TextEvent("Донка")) {
		t.Fatal("choice step must accept listed option")
	}
	if !g.Accepts(StepPhotos, PhotoEvent("x")) {
		t.Fatal("photos step must accept photos")
	}
	if !g.Accepts(StepPhotos, TextEvent(LabelPhotosDone)) {
		t.Fatal("photos step must accept the done label")
	}
	if g.Accepts(StepPhotos, TextEvent("hello")) {
		t.Fatal("photos step must reject stray text")
	}
}

func TestEveryStepBelongsToGraph(t *testing.T) {
	g := NewGraph()
	all := []Step{
		StepWaterbody, StepCoordinates, StepTackle, StepClip, StepDepth,
		StepTemperature, StepCommentChoice, StepComment, StepNickname,
		StepPhotos, StepConfirm,
	}
	for _, s := range all {
		if !g.Contains(s) {
			t.Fatalf("step %s missing from graph", s)
		}
	}
}

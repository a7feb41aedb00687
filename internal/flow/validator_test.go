package flow

import (
	"fmt"
	"testing"
)

func newTestSession() *Session {
	return NewSession(100, StepWaterbody)
}

func TestCheckChoiceStepRejectsUnlistedOption(t *testing.T) {
	v := NewValidator(NewGraph())
	sess := newTestSession()

	out := v.Check(StepTackle, TextEvent("гарпун"), sess)
	if out.Status != Rejected {
		t.Fatalf("status = %v, want Rejected", out.Status)
	}
	if out.Hint == "" {
		t.Fatal("rejection must carry a hint")
	}

	out = v.Check(StepTackle, TextEvent("Донка"), sess)
	if out.Status != Accepted {
		t.Fatalf("status = %v, want Accepted", out.Status)
	}
	if out.Updates[FieldTackle] != "Донка" {
		t.Fatalf("updates = %v", out.Updates)
	}
}

func TestCheckKindMismatch(t *testing.T) {
	v := NewValidator(NewGraph())
	sess := newTestSession()

	out := v.Check(StepCoordinates, PhotoEvent("file-1"), sess)
	if out.Status != Rejected {
		t.Fatalf("photo at a text step: status = %v, want Rejected", out.Status)
	}
	if out.Hint != Hint(StepCoordinates) {
		t.Fatalf("hint = %q", out.Hint)
	}
}

func TestCheckClipSkipLeavesFieldAbsent(t *testing.T) {
	v := NewValidator(NewGraph())
	sess := newTestSession()

	out := v.Check(StepClip, TextEvent(LabelSkipClip), sess)
	if out.Status != Accepted {
		t.Fatalf("status = %v, want Accepted", out.Status)
	}
	if len(out.Updates) != 0 {
		t.Fatalf("skip must not write an answer, got %v", out.Updates)
	}
}

func TestCheckRejectsReservedLabelsAsFreeText(t *testing.T) {
	v := NewValidator(NewGraph())
	sess := newTestSession()

	for _, label := range []string{LabelSubmit, LabelPhotosDone, LabelSkipComment} {
		out := v.Check(StepNickname, TextEvent(label), sess)
		if out.Status != Rejected {
			t.Fatalf("label %q at nickname step: status = %v, want Rejected", label, out.Status)
		}
	}
}

func TestCheckRejectsBlankFreeText(t *testing.T) {
	v := NewValidator(NewGraph())
	sess := newTestSession()

	out := v.Check(StepComment, TextEvent("   "), sess)
	if out.Status != Rejected {
		t.Fatalf("status = %v, want Rejected", out.Status)
	}
}

func TestCheckPhotoAccumulation(t *testing.T) {
	v := NewValidator(NewGraph())
	sess := newTestSession()
	sess.Current = StepPhotos

	for i := 0; i < MaxAttachments; i++ {
		ref := fmt.Sprintf("file-%d", i)
		out := v.Check(StepPhotos, PhotoEvent(ref), sess)
		if out.Status != Collected {
			t.Fatalf("photo %d: status = %v, want Collected", i, out.Status)
		}
		if out.Media != ref {
			t.Fatalf("photo %d: media = %q", i, out.Media)
		}
		if !sess.AddAttachment(out.Media) {
			t.Fatalf("photo %d not stored", i)
		}
	}
	if len(sess.Attachments) != MaxAttachments {
		t.Fatalf("attachments = %d, want %d", len(sess.Attachments), MaxAttachments)
	}

	// The photo past the limit is acknowledged but not stored.
	out := v.Check(StepPhotos, PhotoEvent("file-extra"), sess)
	if out.Status != Collected {
		t.Fatalf("status = %v, want Collected", out.Status)
	}
	if out.Media != "" {
		t.Fatalf("media past the limit must be dropped, got %q", out.Media)
	}
	if len(sess.Attachments) != MaxAttachments {
		t.Fatalf("attachments grew past the limit: %d", len(sess.Attachments))
	}
}

func TestCheckPhotosDone(t *testing.T) {
	v := NewValidator(NewGraph())
	sess := newTestSession()
	sess.Current = StepPhotos

	out := v.Check(StepPhotos, TextEvent(LabelPhotosDone), sess)
	if out.Status != Rejected {
		t.Fatalf("done with zero photos: status = %v, want Rejected", out.Status)
	}

	sess.AddAttachment("file-1")
	out = v.Check(StepPhotos, TextEvent(LabelPhotosDone), sess)
	if out.Status != Accepted {
		t.Fatalf("done with a photo: status = %v, want Accepted", out.Status)
	}

	out = v.Check(StepPhotos, TextEvent("ещё пара слов"), sess)
	if out.Status != Rejected {
		t.Fatalf("stray text at photos step: status = %v, want Rejected", out.Status)
	}
}

func TestSessionApplyAndAdvance(t *testing.T) {
	sess := newTestSession()

	sess.Apply(Answers{FieldWaterbody: "оз.Медное"})
	sess.Apply(nil)
	if sess.Answers[FieldWaterbody] != "оз.Медное" {
		t.Fatalf("answers = %v", sess.Answers)
	}

	before := sess.Current
	sess.Advance(StepCoordinates)
	if sess.Current != StepCoordinates || before != StepWaterbody {
		t.Fatalf("current = %s", sess.Current)
	}
}

package dispatch

import (
	"context"
	"errors"
	"net"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/xisscag-ops/rr4world/internal/flow"
	"github.com/xisscag-ops/rr4world/internal/report"
)

type fakeSender struct {
	mu            sync.Mutex
	texts         map[int64][]string
	albums        map[int64]int
	failText      map[int64]error
	failUntil     map[int64]int // recipient -> media group attempts that must fail before success
	failTextUntil map[int64]int // recipient -> text attempts that must fail transiently
	calls         map[int64]int
	textCalls     map[int64]int
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		texts:         make(map[int64][]string),
		albums:        make(map[int64]int),
		failText:      make(map[int64]error),
		failUntil:     make(map[int64]int),
		failTextUntil: make(map[int64]int),
		calls:         make(map[int64]int),
		textCalls:     make(map[int64]int),
	}
}

func (f *fakeSender) SendText(_ context.Context, recipient int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls[recipient]++
	if f.textCalls[recipient] <= f.failTextUntil[recipient] {
		return timeoutErr{}
	}
	if err := f.failText[recipient]; err != nil {
		return err
	}
	f.texts[recipient] = append(f.texts[recipient], text)
	return nil
}

func (f *fakeSender) SendMediaGroup(_ context.Context, recipient int64, photos []string, caption string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[recipient]++
	if f.calls[recipient] <= f.failUntil[recipient] {
		return &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	}
	f.albums[recipient]++
	return nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func sampleReport() report.Report {
	return report.Report{
		ID:        "sub-1",
		Submitter: report.Submitter{ID: 5, FullName: "Тест"},
		Answers: flow.Answers{
			flow.FieldWaterbody: "оз.Медное",
			flow.FieldNickname:  "nick",
		},
		Photos: []string{"ph-1", "ph-2"},
	}
}

func TestDispatchDeliversToAllRecipients(t *testing.T) {
	s := newFakeSender()
	d := New(s, Options{RetryBackoff: time.Millisecond})

	res := d.Dispatch(context.Background(), sampleReport(), "https://t.me/ch", []int64{10, 20, 30})

	if res.Delivered() != 3 || res.Failed() != 0 {
		t.Fatalf("delivered=%d failed=%d", res.Delivered(), res.Failed())
	}
	for _, r := range []int64{10, 20, 30} {
		if s.albums[r] != 1 {
			t.Fatalf("recipient %d: albums = %d", r, s.albums[r])
		}
		// The service info follows the media group.
		if len(s.texts[r]) != 1 {
			t.Fatalf("recipient %d: texts = %v", r, s.texts[r])
		}
	}
}

func TestDispatchTextOnlyWithoutPhotos(t *testing.T) {
	s := newFakeSender()
	d := New(s, Options{RetryBackoff: time.Millisecond})

	r := sampleReport()
	r.Photos = nil
	res := d.Dispatch(context.Background(), r, "https://t.me/ch", []int64{10})

	if res.Delivered() != 1 {
		t.Fatalf("delivered = %d", res.Delivered())
	}
	if s.albums[10] != 0 {
		t.Fatal("no media group expected without photos")
	}
	if len(s.texts[10]) != 2 {
		t.Fatalf("texts = %v", s.texts[10])
	}
}

func TestDispatchToleratesPartialFailure(t *testing.T) {
	s := newFakeSender()
	s.failText[20] = errors.New("Forbidden: bot was blocked by the user")
	d := New(s, Options{RetryBackoff: time.Millisecond})

	r := sampleReport()
	r.Photos = nil
	res := d.Dispatch(context.Background(), r, "https://t.me/ch", []int64{10, 20, 30})

	if res.Delivered() != 2 || res.Failed() != 1 {
		t.Fatalf("delivered=%d failed=%d", res.Delivered(), res.Failed())
	}

	var failedRecipients []int64
	var okRecipients []int64
	for _, o := range res.Outcomes {
		if o.Err != nil {
			failedRecipients = append(failedRecipients, o.Recipient)
		} else {
			okRecipients = append(okRecipients, o.Recipient)
		}
	}
	if len(failedRecipients) != 1 || failedRecipients[0] != 20 {
		t.Fatalf("failed recipients = %v", failedRecipients)
	}
	sort.Slice(okRecipients, func(i, j int) bool { return okRecipients[i] < okRecipients[j] })
	if len(okRecipients) != 2 || okRecipients[0] != 10 || okRecipients[1] != 30 {
		t.Fatalf("ok recipients = %v", okRecipients)
	}
}

func TestDispatchRetriesTransientErrors(t *testing.T) {
	s := newFakeSender()
	s.failUntil[10] = 2
	d := New(s, Options{MaxRetries: 2, RetryBackoff: time.Millisecond})

	res := d.Dispatch(context.Background(), sampleReport(), "https://t.me/ch", []int64{10})

	if res.Delivered() != 1 {
		t.Fatalf("delivered = %d, outcomes = %+v", res.Delivered(), res.Outcomes)
	}
	if s.calls[10] != 3 {
		t.Fatalf("attempts = %d, want 3", s.calls[10])
	}
}

func TestRetryResumesAfterDeliveredMediaGroup(t *testing.T) {
	s := newFakeSender()
	s.failTextUntil[10] = 1
	d := New(s, Options{MaxRetries: 2, RetryBackoff: time.Millisecond})

	res := d.Dispatch(context.Background(), sampleReport(), "https://t.me/ch", []int64{10})

	if res.Delivered() != 1 {
		t.Fatalf("delivered = %d, outcomes = %+v", res.Delivered(), res.Outcomes)
	}
	// The retry picks up at the failed service-info text; the media group
	// goes out exactly once.
	if s.albums[10] != 1 {
		t.Fatalf("albums = %d, want 1", s.albums[10])
	}
	if len(s.texts[10]) != 1 {
		t.Fatalf("texts = %v", s.texts[10])
	}
	if s.textCalls[10] != 2 {
		t.Fatalf("text attempts = %d, want 2", s.textCalls[10])
	}
}

func TestDispatchDoesNotRetryPermanentErrors(t *testing.T) {
	s := newFakeSender()
	s.failText[10] = errors.New("Bad Request: chat not found")
	d := New(s, Options{MaxRetries: 3, RetryBackoff: time.Millisecond})

	r := sampleReport()
	r.Photos = nil
	res := d.Dispatch(context.Background(), r, "https://t.me/ch", []int64{10})

	if res.Failed() != 1 {
		t.Fatalf("failed = %d", res.Failed())
	}
	if len(s.texts[10]) != 0 {
		t.Fatalf("texts = %v", s.texts[10])
	}
}

func TestShouldRetry(t *testing.T) {
	if !shouldRetry(timeoutErr{}) {
		t.Fatal("timeout errors are transient")
	}
	if !shouldRetry(&net.OpError{Op: "dial", Err: errors.New("refused")}) {
		t.Fatal("dial errors are transient")
	}
	if shouldRetry(errors.New("Forbidden: bot was blocked by the user")) {
		t.Fatal("application errors are permanent")
	}
	if shouldRetry(nil) {
		t.Fatal("nil is not retryable")
	}
}

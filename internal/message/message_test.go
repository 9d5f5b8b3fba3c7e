package message_test

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/MrWong99/gambit/internal/message"
)

func TestAppend_TrimsAndAssigns(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := message.NewStore(message.WithClock(func() time.Time { return now }))

	m, err := s.Append(message.User, "  How to improve in endgames?\n")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	want := message.Message{
		Seq:       1,
		Author:    message.User,
		Text:      "How to improve in endgames?",
		CreatedAt: now,
	}
	if diff := cmp.Diff(want, m, cmpopts.IgnoreFields(message.Message{}, "ID")); diff != "" {
		t.Errorf("Append mismatch (-want +got):\n%s", diff)
	}
	if m.ID.Version() != 7 {
		t.Errorf("ID version = %d, want 7", m.ID.Version())
	}
}

func TestAppend_Rejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		author  message.Author
		text    string
		wantErr error
	}{
		{"empty", message.User, "", message.ErrEmptyContent},
		{"whitespace", message.User, " \t\n ", message.ErrEmptyContent},
		{"unknown author", message.Author("system"), "hi", message.ErrUnknownAuthor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := message.NewStore()
			_, err := s.Append(tt.author, tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Append error = %v, want %v", err, tt.wantErr)
			}
			if s.Len() != 0 {
				t.Errorf("Len() = %d after rejected append, want 0", s.Len())
			}
		})
	}
}

func TestAppend_CreatedAtNeverGoesBackwards(t *testing.T) {
	t.Parallel()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(-time.Minute), base.Add(time.Second)}
	i := 0
	s := message.NewStore(message.WithClock(func() time.Time {
		t := times[i]
		i++
		return t
	}))

	for _, text := range []string{"a", "b", "c"} {
		if _, err := s.Append(message.User, text); err != nil {
			t.Fatalf("Append(%q): %v", text, err)
		}
	}

	msgs := slices.Collect(s.All())
	for i := 1; i < len(msgs); i++ {
		if msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt) {
			t.Errorf("msgs[%d].CreatedAt %v before msgs[%d].CreatedAt %v", i, msgs[i].CreatedAt, i-1, msgs[i-1].CreatedAt)
		}
		if msgs[i].Seq != msgs[i-1].Seq+1 {
			t.Errorf("msgs[%d].Seq = %d, want %d", i, msgs[i].Seq, msgs[i-1].Seq+1)
		}
		if msgs[i].ID.String() <= msgs[i-1].ID.String() {
			t.Errorf("IDs not time ordered: %s then %s", msgs[i-1].ID, msgs[i].ID)
		}
	}
	if !msgs[1].CreatedAt.Equal(base) {
		t.Errorf("clamped CreatedAt = %v, want %v", msgs[1].CreatedAt, base)
	}
}

func TestAll_IsSnapshotAndRestartable(t *testing.T) {
	t.Parallel()
	s := message.NewStore()
	mustAppend(t, s, message.Coach, "Hello!")
	mustAppend(t, s, message.User, "Hi")

	seq := s.All()
	mustAppend(t, s, message.Coach, "later")

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if len(first) != 2 {
		t.Fatalf("snapshot has %d messages, want 2", len(first))
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("iterating twice differs (-first +second):\n%s", diff)
	}
	if got := s.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestAll_EarlyBreak(t *testing.T) {
	t.Parallel()
	s := message.NewStore()
	for _, text := range []string{"a", "b", "c"} {
		mustAppend(t, s, message.User, text)
	}

	var got []string
	for m := range s.All() {
		got = append(got, m.Text)
		if len(got) == 2 {
			break
		}
	}
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("early break (-want +got):\n%s", diff)
	}
}

func TestSnapshot_IsIndependent(t *testing.T) {
	t.Parallel()
	s := message.NewStore()
	mustAppend(t, s, message.User, "original")

	snap := s.Snapshot()
	snap[0].Text = "mutated"

	last, ok := s.Last()
	if !ok || last.Text != "original" {
		t.Errorf("Last() = %+v, %v; store was modified through a snapshot", last, ok)
	}
}

func TestLast_Empty(t *testing.T) {
	t.Parallel()
	if _, ok := message.NewStore().Last(); ok {
		t.Error("Last() on empty store should report false")
	}
}

func TestAppend_Concurrent(t *testing.T) {
	t.Parallel()
	s := message.NewStore()

	const n = 50
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			if _, err := s.Append(message.User, "hi"); err != nil {
				t.Errorf("Append: %v", err)
			}
			_ = slices.Collect(s.All())
		})
	}
	wg.Wait()

	msgs := s.Snapshot()
	if len(msgs) != n {
		t.Fatalf("Len = %d, want %d", len(msgs), n)
	}
	for i, m := range msgs {
		if m.Seq != uint64(i+1) {
			t.Errorf("msgs[%d].Seq = %d, want %d", i, m.Seq, i+1)
		}
	}
}

func mustAppend(t *testing.T, s *message.Store, a message.Author, text string) message.Message {
	t.Helper()
	m, err := s.Append(a, text)
	if err != nil {
		t.Fatalf("Append(%q): %v", text, err)
	}
	return m
}

package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeWords struct {
	accepted map[string]bool
	targets  []string
	drawErr  error
	gate     chan struct{} // when set, IsAccepted blocks until it is closed
	entered  chan struct{}
}

func (f *fakeWords) IsAccepted(ctx context.Context, word string, _ int) bool {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return false
		}
	}
	return f.accepted[word]
}

func (f *fakeWords) RandomWord(_ context.Context, length int) (string, error) {
	if f.drawErr != nil {
		return "", f.drawErr
	}
	for _, w := range f.targets {
		if len(w) == length {
			return w, nil
		}
	}
	return "", errors.New("no word")
}

func newFakeWords() *fakeWords {
	return &fakeWords{
		accepted: map[string]bool{
			"apple": true, "crane": true, "slate": true, "pleap": true,
			"house": true, "mouse": true, "bread": true, "trick": true,
			"book": true,
		},
		targets: []string{"book", "apple", "banana"},
	}
}

func typeWord(t *testing.T, s *Session, word string) {
	t.Helper()
	for _, c := range word {
		if _, err := s.AppendChar(string(c)); err != nil {
			t.Fatalf("AppendChar(%q): %v", c, err)
		}
	}
}

func TestStart(t *testing.T) {
	s, err := Start(context.Background(), newFakeWords(), 5, DefaultMaxAttempts)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	st := s.State()
	if st.TargetWord != "apple" || st.WordLength != 5 || st.Status != Playing {
		t.Errorf("Start state = %+v", st)
	}
	if len(st.Guesses) != 0 || st.CurrentGuess != "" {
		t.Errorf("Start should have empty history and input, got %+v", st)
	}
}

func TestStart_UnsupportedLength(t *testing.T) {
	if _, err := Start(context.Background(), newFakeWords(), 9, DefaultMaxAttempts); !errors.Is(err, ErrUnsupportedLength) {
		t.Errorf("Start(9) error = %v, want ErrUnsupportedLength", err)
	}
}

func TestSession_AppendCharAndBackspace(t *testing.T) {
	s, _ := Start(context.Background(), newFakeWords(), 5, DefaultMaxAttempts)

	typeWord(t, s, "CrAnEs")
	if got := s.State().CurrentGuess; got != "crane" {
		t.Errorf("CurrentGuess = %q, want crane (lowercased, capped at word length)", got)
	}

	for _, bad := range []string{"1", "", "ab", "é", "Shift"} {
		st, err := s.AppendChar(bad)
		if err != nil || st.CurrentGuess != "crane" {
			t.Errorf("AppendChar(%q) = %q, %v; want unchanged", bad, st.CurrentGuess, err)
		}
	}

	for range 5 {
		s.Backspace()
	}
	st, err := s.Backspace()
	if err != nil || st.CurrentGuess != "" {
		t.Errorf("Backspace on empty = %q, %v; want no-op", st.CurrentGuess, err)
	}
}

func TestSession_SubmitIncomplete(t *testing.T) {
	s, _ := Start(context.Background(), newFakeWords(), 5, DefaultMaxAttempts)
	typeWord(t, s, "cra")
	st, err := s.Submit(context.Background())
	if !errors.Is(err, ErrIncompleteGuess) {
		t.Errorf("Submit short guess error = %v, want ErrIncompleteGuess", err)
	}
	if st.CurrentGuess != "cra" || len(st.Guesses) != 0 {
		t.Errorf("state changed on rejected submit: %+v", st)
	}
}

func TestSession_SubmitNotAWord(t *testing.T) {
	s, _ := Start(context.Background(), newFakeWords(), 5, DefaultMaxAttempts)
	typeWord(t, s, "xqzvw")
	st, err := s.Submit(context.Background())
	if !errors.Is(err, ErrNotAWord) {
		t.Errorf("Submit error = %v, want ErrNotAWord", err)
	}
	if st.CurrentGuess != "xqzvw" || len(st.Guesses) != 0 || st.Status != Playing {
		t.Errorf("state changed on rejected word: %+v", st)
	}
	if s.Checking() {
		t.Error("session still checking after rejection")
	}
}

func TestSession_Win(t *testing.T) {
	s, _ := Start(context.Background(), newFakeWords(), 5, DefaultMaxAttempts)
	typeWord(t, s, "crane")
	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("Submit crane: %v", err)
	}
	typeWord(t, s, "apple")
	st, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit apple: %v", err)
	}
	if st.Status != Won {
		t.Errorf("Status = %q, want won", st.Status)
	}
	if len(st.Guesses) != 2 || st.CurrentGuess != "" {
		t.Errorf("after win: %d guesses, input %q", len(st.Guesses), st.CurrentGuess)
	}
	if st.Revealed() != "apple" {
		t.Errorf("Revealed = %q, want apple", st.Revealed())
	}
}

func TestSession_Lose(t *testing.T) {
	s, _ := Start(context.Background(), newFakeWords(), 5, 3)
	for i, w := range []string{"crane", "slate", "house"} {
		typeWord(t, s, w)
		st, err := s.Submit(context.Background())
		if err != nil {
			t.Fatalf("Submit %q: %v", w, err)
		}
		if i < 2 && st.Status != Playing {
			t.Fatalf("status after %d guesses = %q", i+1, st.Status)
		}
	}
	st := s.State()
	if st.Status != Lost {
		t.Errorf("Status = %q, want lost", st.Status)
	}
	if len(st.Guesses) != 3 || st.Guesses[2].Word() != "house" {
		t.Errorf("last guess not recorded: %+v", st.Guesses)
	}
	if st.AttemptsLeft() != 0 {
		t.Errorf("AttemptsLeft = %d, want 0", st.AttemptsLeft())
	}
}

func TestSession_FrozenAfterGameOver(t *testing.T) {
	s, _ := Start(context.Background(), newFakeWords(), 5, DefaultMaxAttempts)
	typeWord(t, s, "apple")
	won, _ := s.Submit(context.Background())

	s.AppendChar("a")
	s.Backspace()
	st, err := s.Submit(context.Background())
	if !errors.Is(err, ErrGameOver) {
		t.Errorf("Submit after win error = %v, want ErrGameOver", err)
	}
	if st.CurrentGuess != "" || len(st.Guesses) != len(won.Guesses) || st.Status != Won {
		t.Errorf("state changed after game over: %+v", st)
	}
}

func TestSession_NewGameResets(t *testing.T) {
	words := newFakeWords()
	s, _ := Start(context.Background(), words, 5, 1)
	typeWord(t, s, "crane")
	lost, _ := s.Submit(context.Background())
	if lost.Status != Lost {
		t.Fatalf("expected lost game, got %q", lost.Status)
	}

	st, err := s.NewGame(context.Background(), 4)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if st.Status != Playing || len(st.Guesses) != 0 || st.CurrentGuess != "" {
		t.Errorf("NewGame state = %+v", st)
	}
	if st.WordLength != 4 || st.TargetWord != "book" {
		t.Errorf("NewGame length/target = %d/%q", st.WordLength, st.TargetWord)
	}

	// The previous snapshot is untouched.
	if len(lost.Guesses) != 1 || lost.Status != Lost {
		t.Errorf("old snapshot mutated: %+v", lost)
	}
}

func TestSession_NewGameDrawError(t *testing.T) {
	words := newFakeWords()
	s, _ := Start(context.Background(), words, 5, DefaultMaxAttempts)
	before := s.State()
	words.drawErr = errors.New("list unavailable")
	st, err := s.NewGame(context.Background(), 5)
	if err == nil {
		t.Fatal("NewGame should fail when no word can be drawn")
	}
	if st.TargetWord != before.TargetWord {
		t.Errorf("state replaced on failed NewGame")
	}
}

func TestSession_ChangeLength(t *testing.T) {
	s, _ := Start(context.Background(), newFakeWords(), 5, DefaultMaxAttempts)
	typeWord(t, s, "crane")
	s.Submit(context.Background())
	st, err := s.ChangeLength(context.Background(), 6)
	if err != nil {
		t.Fatalf("ChangeLength: %v", err)
	}
	if st.WordLength != 6 || len(st.Guesses) != 0 || st.TargetWord != "banana" {
		t.Errorf("ChangeLength state = %+v", st)
	}
}

func TestSession_Key(t *testing.T) {
	s, _ := Start(context.Background(), newFakeWords(), 4, DefaultMaxAttempts)
	ctx := context.Background()
	for _, k := range []string{"b", "o", "x", "Backspace", "o", "k", "Enter"} {
		if _, err := s.Key(ctx, k); err != nil {
			t.Fatalf("Key(%q): %v", k, err)
		}
	}
	if st := s.State(); st.Status != Won {
		t.Errorf("Status = %q after typing book, want won", st.Status)
	}
}

func TestSession_SingleFlightSubmit(t *testing.T) {
	words := newFakeWords()
	s, _ := Start(context.Background(), words, 5, DefaultMaxAttempts)
	typeWord(t, s, "crane")

	words.gate = make(chan struct{})
	words.entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()
	<-words.entered

	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("second Submit error = %v, want ErrBusy", err)
	}
	if _, err := s.AppendChar("x"); !errors.Is(err, ErrBusy) {
		t.Errorf("AppendChar while checking error = %v, want ErrBusy", err)
	}
	if _, err := s.Backspace(); !errors.Is(err, ErrBusy) {
		t.Errorf("Backspace while checking error = %v, want ErrBusy", err)
	}

	close(words.gate)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first Submit: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("first Submit did not return")
	}
	if st := s.State(); len(st.Guesses) != 1 {
		t.Errorf("expected exactly one scored guess, got %d", len(st.Guesses))
	}
}

func TestSession_NewGameDuringCheckDropsSubmission(t *testing.T) {
	words := newFakeWords()
	s, _ := Start(context.Background(), words, 5, DefaultMaxAttempts)
	typeWord(t, s, "crane")

	words.gate = make(chan struct{})
	words.entered = make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		s.Submit(context.Background())
		close(done)
	}()
	<-words.entered

	if _, err := s.NewGame(context.Background(), 4); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	close(words.gate)
	<-done

	st := s.State()
	if st.WordLength != 4 || len(st.Guesses) != 0 {
		t.Errorf("stale submission leaked into new game: %+v", st)
	}
	if s.Checking() {
		t.Error("session left in checking state")
	}
}

func TestSession_OnChange(t *testing.T) {
	s, _ := Start(context.Background(), newFakeWords(), 5, DefaultMaxAttempts)
	var seen []State
	s.OnChange(func(st State) { seen = append(seen, st) })

	s.AppendChar("a")
	s.AppendChar("7") // ignored, no snapshot
	s.Backspace()
	s.Backspace() // no-op, no snapshot
	if len(seen) != 2 {
		t.Errorf("OnChange called %d times, want 2", len(seen))
	}
}

func TestResume(t *testing.T) {
	st := NewState("apple", 3)
	st = st.AppendChar("p")
	s := Resume(newFakeWords(), st, DefaultMaxAttempts)
	if got := s.State(); got.CurrentGuess != "p" || got.TargetWord != "apple" || got.MaxAttempts != 3 {
		t.Errorf("Resume state = %+v", got)
	}

	// Later games use the configured limit, not the restored one.
	next, err := s.NewGame(context.Background(), 5)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if next.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("NewGame after Resume MaxAttempts = %d, want %d", next.MaxAttempts, DefaultMaxAttempts)
	}

	if s := Resume(newFakeWords(), st, 0); s.maxAttempts != DefaultMaxAttempts {
		t.Errorf("Resume with no limit uses %d attempts, want %d", s.maxAttempts, DefaultMaxAttempts)
	}
}

func TestSession_SubmitWord(t *testing.T) {
	ctx := context.Background()
	s, _ := Start(ctx, newFakeWords(), 5, DefaultMaxAttempts)
	typeWord(t, s, "xy")

	for _, word := range []string{"ap", "applesauce", ""} {
		st, err := s.SubmitWord(ctx, word)
		if !errors.Is(err, ErrIncompleteGuess) {
			t.Errorf("SubmitWord(%q) error = %v, want ErrIncompleteGuess", word, err)
		}
		if st.CurrentGuess != "xy" {
			t.Errorf("SubmitWord(%q) changed input to %q", word, st.CurrentGuess)
		}
	}

	st, err := s.SubmitWord(ctx, "zzzzz")
	if !errors.Is(err, ErrNotAWord) || st.CurrentGuess != "zzzzz" || len(st.Guesses) != 0 {
		t.Errorf("SubmitWord(zzzzz) = %q, %d guesses, %v; want input kept and ErrNotAWord", st.CurrentGuess, len(st.Guesses), err)
	}

	st, err = s.SubmitWord(ctx, "CRANE")
	if err != nil || len(st.Guesses) != 1 || st.Guesses[0].Word() != "crane" {
		t.Fatalf("SubmitWord(CRANE) = %+v, %v", st, err)
	}

	if st, err := s.SubmitWord(ctx, "apple"); err != nil || st.Status != Won {
		t.Errorf("SubmitWord(apple) = %v, %v; want Won", st.Status, err)
	}
	if st, err := s.SubmitWord(ctx, "slate"); !errors.Is(err, ErrGameOver) || st.CurrentGuess != "" {
		t.Errorf("SubmitWord after game over = %q, %v; want ErrGameOver and no input", st.CurrentGuess, err)
	}
}

func TestSession_SubmitWordHoldsInput(t *testing.T) {
	words := newFakeWords()
	s, _ := Start(context.Background(), words, 5, DefaultMaxAttempts)
	typeWord(t, s, "sla")

	words.gate = make(chan struct{})
	words.entered = make(chan struct{}, 1)

	done := make(chan State, 1)
	go func() {
		st, _ := s.SubmitWord(context.Background(), "crane")
		done <- st
	}()
	<-words.entered

	// The word is already in place and locked against edits.
	if cur := s.State().CurrentGuess; cur != "crane" {
		t.Errorf("input while checking = %q, want crane", cur)
	}
	if _, err := s.AppendChar("x"); !errors.Is(err, ErrBusy) {
		t.Errorf("AppendChar while checking error = %v, want ErrBusy", err)
	}
	if _, err := s.SubmitWord(context.Background(), "slate"); !errors.Is(err, ErrBusy) {
		t.Errorf("second SubmitWord error = %v, want ErrBusy", err)
	}

	close(words.gate)
	select {
	case st := <-done:
		if len(st.Guesses) != 1 || st.Guesses[0].Word() != "crane" {
			t.Errorf("scored guesses = %+v, want crane only", st.Guesses)
		}
	case <-time.After(time.Second):
		t.Fatal("SubmitWord did not return")
	}
}

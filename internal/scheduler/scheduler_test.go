package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/postdex/internal/testutil"
)

func TestSchedule_Invalid(t *testing.T) {
	s := New(testutil.Logger())
	defer s.Stop()

	for _, spec := range []string{"", "not a cron", "61 * * * *"} {
		if err := s.Schedule(spec, func() {}); err == nil {
			t.Errorf("Schedule(%q) succeeded", spec)
		}
	}
}

func TestValidate(t *testing.T) {
	for _, spec := range []string{"*/5 * * * *", "@hourly", "@every 10m", "0 3 * * 1-5"} {
		if err := Validate(spec); err != nil {
			t.Errorf("Validate(%q) = %v", spec, err)
		}
	}
	for _, spec := range []string{"", "* * *", "@sometimes"} {
		if err := Validate(spec); err == nil {
			t.Errorf("Validate(%q) succeeded", spec)
		}
	}
}

func TestNext(t *testing.T) {
	s := New(testutil.Logger())
	defer s.Stop()

	if !s.Next().IsZero() {
		t.Error("Next before Schedule is not zero")
	}
	if err := s.Schedule("@hourly", func() {}); err != nil {
		t.Fatal(err)
	}
	s.Start()

	next := s.Next()
	if next.IsZero() || next.Sub(time.Now()) > time.Hour {
		t.Errorf("Next = %v", next)
	}
}

func TestSchedule_Runs(t *testing.T) {
	s := New(testutil.Logger())

	var calls atomic.Int32
	if err := s.Schedule("@every 1s", func() { calls.Add(1) }); err != nil {
		t.Fatal(err)
	}
	s.Start()

	deadline := time.Now().Add(5 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()

	if calls.Load() == 0 {
		t.Fatal("task never ran")
	}
}

func TestSchedule_Replaces(t *testing.T) {
	s := New(testutil.Logger())

	var first, second atomic.Int32
	if err := s.Schedule("@every 1s", func() { first.Add(1) }); err != nil {
		t.Fatal(err)
	}
	if err := s.Schedule("@every 1s", func() { second.Add(1) }); err != nil {
		t.Fatal(err)
	}
	s.Start()

	deadline := time.Now().Add(5 * time.Second)
	for second.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()

	if second.Load() == 0 {
		t.Fatal("replacement task never ran")
	}
	if first.Load() != 0 {
		t.Errorf("replaced task ran %d times", first.Load())
	}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
)

func TestReadRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun("run-1", "pidf")
	run.StartTick = 7
	run.FaultCode = "NO_CONFIG"
	run.FaultNode = "lp"
	run.Roots = []Root{{Name: "ramp", Kind: "int", Value: 7}}
	if _, err := s.WriteRun(ctx, run, nil); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}

	run.Seq = 1
	if !reflect.DeepEqual(got, run) {
		t.Errorf("ReadRun() = %+v, want %+v", got, run)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ReadRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestListRuns_Order(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, r := range []Run{
		createTestRun("z", "pidf"),
		createTestRun("a", "scope"),
		createTestRun("m", "pidf"),
	} {
		if _, err := s.WriteRun(ctx, r, nil); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", r.ID, err)
		}
	}

	all, err := s.ListRuns(ctx, "")
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if got := ids(all); !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Errorf("ListRuns(\"\") = %v, want seq order", got)
	}

	pidf, err := s.ListRuns(ctx, "pidf")
	if err != nil {
		t.Fatalf("ListRuns(pidf) failed: %v", err)
	}
	if got := ids(pidf); !reflect.DeepEqual(got, []string{"z", "m"}) {
		t.Errorf("ListRuns(pidf) = %v", got)
	}
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), "")
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("ListRuns() = %v, want none", runs)
	}
}

func TestReadCapture_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.WriteRun(ctx, createTestRun("run-1", "pidf"), createTestCapture()); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadCapture(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadCapture() failed: %v", err)
	}

	want := createTestCapture()
	want.Channels[0].Position = 0
	want.Channels[1].Position = 1
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadCapture() = %+v, want %+v", got, want)
	}
}

func TestReadCapture_NoCapture(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.WriteRun(ctx, createTestRun("run-1", "pidf"), nil); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadCapture(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadCapture() failed: %v", err)
	}
	if len(got.Channels) != 0 || len(got.Rows) != 0 {
		t.Errorf("ReadCapture() = %+v, want empty", got)
	}
}

func ids(runs []Run) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}

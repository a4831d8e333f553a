package fiber

import (
	"context"
	"errors"
	"testing"

	"github.com/nooga/tsrt/pkg/value"
)

func TestResumeYieldHandoff(t *testing.T) {
	f := New(context.Background(), func(ctx context.Context, args []value.Value) ([]value.Value, error) {
		sum := args[0].AsNumber()
		for i := 0; i < 2; i++ {
			in, err := Yield(ctx, value.Number(sum))
			if err != nil {
				return nil, err
			}
			sum += in[0].AsNumber()
		}
		return []value.Value{value.Number(sum), value.String("end")}, nil
	})

	steps := []struct {
		in   float64
		want float64
		done bool
	}{
		{1, 1, false},
		{2, 3, false},
		{4, 7, true},
	}
	for i, s := range steps {
		vals, done, err := f.Resume(value.Number(s.in))
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if done != s.done || vals[0].AsNumber() != s.want {
			t.Errorf("step %d: got (%v, %v), want (%v, %v)", i, vals[0].AsNumber(), done, s.want, s.done)
		}
	}
	if f.Status() != Dead {
		t.Errorf("status = %s, want dead", f.Status())
	}
	if _, _, err := f.Resume(); err == nil || err.Error() != "cannot resume dead fiber" {
		t.Errorf("resume of dead fiber = %v", err)
	}
}

func TestResumeRunningFiber(t *testing.T) {
	var inner error
	var f *Fiber
	f = New(context.Background(), func(ctx context.Context, _ []value.Value) ([]value.Value, error) {
		_, _, inner = f.Resume()
		if Current(ctx) != f {
			t.Errorf("Current(ctx) is not the fiber itself")
		}
		return nil, nil
	})
	if _, _, err := f.Resume(); err != nil {
		t.Fatal(err)
	}
	if inner == nil || inner.Error() != "cannot resume non-suspended fiber" {
		t.Errorf("self-resume = %v", inner)
	}
}

func TestThrowAtSuspensionPoint(t *testing.T) {
	boom := errors.New("boom")
	f := New(context.Background(), func(ctx context.Context, _ []value.Value) ([]value.Value, error) {
		if _, err := Yield(ctx); err != nil {
			return []value.Value{value.String("caught " + err.Error())}, nil
		}
		return nil, nil
	})
	if _, _, err := f.Resume(); err != nil {
		t.Fatal(err)
	}
	vals, done, err := f.Throw(boom)
	if err != nil || !done || vals[0].AsString() != "caught boom" {
		t.Errorf("Throw = %v, %v, %v", vals, done, err)
	}

	g := New(context.Background(), func(context.Context, []value.Value) ([]value.Value, error) {
		t.Errorf("body ran after Throw on an unstarted fiber")
		return nil, nil
	})
	if _, done, err := g.Throw(boom); err != boom || !done {
		t.Errorf("Throw before start = %v, %v", done, err)
	}
}

func TestCloseRunsDefers(t *testing.T) {
	cleaned := false
	f := New(context.Background(), func(ctx context.Context, _ []value.Value) ([]value.Value, error) {
		defer func() { cleaned = true }()
		for {
			if _, err := Yield(ctx); err != nil {
				return nil, err
			}
		}
	})
	if _, _, err := f.Resume(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if !cleaned || f.Status() != Dead {
		t.Errorf("cleaned = %v, status = %s", cleaned, f.Status())
	}
}

func TestPanicBecomesError(t *testing.T) {
	f := New(context.Background(), func(context.Context, []value.Value) ([]value.Value, error) {
		panic("kaput")
	})
	_, done, err := f.Resume()
	if err == nil || !done {
		t.Errorf("Resume = %v, %v; want an error and done", done, err)
	}
}

func TestYieldOutsideFiber(t *testing.T) {
	if _, err := Yield(context.Background()); err == nil {
		t.Errorf("Yield outside a fiber should fail")
	}
}

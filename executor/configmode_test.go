package executor

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestRunConfigOrdering(t *testing.T) {
	ch := connectedMock(t)
	ch.SetDefaultResponse("ok")
	e := newTestExecutor(t, ch, nil)

	commands := []string{"interface Gi1/0/1", "no shutdown"}
	if err := e.RunConfig(context.Background(), commands); err != nil {
		t.Fatalf("RunConfig: %v", err)
	}

	want := []string{
		"configure terminal",
		"interface Gi1/0/1",
		"no shutdown",
		"end",
	}
	if got := ch.History(); !reflect.DeepEqual(got, want) {
		t.Fatalf("command order = %v, want %v", got, want)
	}
}

func TestRunConfigEmpty(t *testing.T) {
	ch := connectedMock(t)
	e := newTestExecutor(t, ch, nil)

	if err := e.RunConfig(context.Background(), nil); err != nil {
		t.Fatalf("RunConfig: %v", err)
	}
	if got := len(ch.History()); got != 0 {
		t.Fatalf("empty transaction sent %d commands", got)
	}
}

func TestRunConfigExitsAfterFailure(t *testing.T) {
	ch := connectedMock(t)
	ch.SetDefaultResponse("ok")
	failErr := errors.New("device rejected command")
	ch.FailCommand("bad command", failErr)
	e := newTestExecutor(t, ch, nil)

	err := e.RunConfig(context.Background(), []string{"interface Gi1/0/1", "bad command", "never sent"})
	if !errors.Is(err, failErr) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}

	history := ch.History()
	if history[len(history)-1] != "end" {
		t.Fatalf("config mode not exited after failure, history = %v", history)
	}
	for _, cmd := range history {
		if cmd == "never sent" {
			t.Fatal("commands after a failure must not be sent")
		}
	}
}

func TestRunConfigEnterFailureSkipsCommands(t *testing.T) {
	ch := connectedMock(t)
	ch.SetDefaultResponse("ok")
	enterErr := errors.New("enter failed")
	ch.FailCommand("configure terminal", enterErr)
	e := newTestExecutor(t, ch, nil)

	err := e.RunConfig(context.Background(), []string{"interface Gi1/0/1"})
	if !errors.Is(err, enterErr) {
		t.Fatalf("expected enter failure, got %v", err)
	}

	// config mode was never entered, so no exit should be attempted
	if got := ch.History(); !reflect.DeepEqual(got, []string{"configure terminal"}) {
		t.Fatalf("history = %v, want only the failed enter", got)
	}
}

func TestRunConfigExitSentOnce(t *testing.T) {
	ch := connectedMock(t)
	ch.SetDefaultResponse("ok")
	exitErr := errors.New("exit timed out")
	ch.FailCommand("end", exitErr)
	e := newTestExecutor(t, ch, nil)

	err := e.RunConfig(context.Background(), []string{"interface Gi1/0/1"})
	if !errors.Is(err, exitErr) {
		t.Fatalf("expected exit failure, got %v", err)
	}

	ends := 0
	for _, cmd := range ch.History() {
		if cmd == "end" {
			ends++
		}
	}
	if ends != 1 {
		t.Fatalf("exit command sent %d times, want 1", ends)
	}
}

package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent tomorrow", TypeAdd},
		{"done 3", TypeDone},
		{"/x 1", TypeDone},
		{"rm 2", TypeDelete},
		{"move 2 Work / Backend", TypeMove},
		{"sub 4 2", TypeSub},
		{"set 1 p 2", TypeSet},
		{"newproject", TypeProject},
		{"rename 2 Errands", TypeRename},
		{"drop 3", TypeDrop},
		{"show today tag:finance", TypeShow},
		{"find rent", TypeSearch},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseArguments(t *testing.T) {
	cmd, err := Parse("/move #2 Work / Backend")
	if err != nil {
		t.Fatalf("parse move: %v", err)
	}
	if cmd.Move.Index != 2 || cmd.Move.Project != "Work / Backend" {
		t.Fatalf("unexpected move args: %+v", cmd.Move)
	}

	cmd, err = Parse("show week tag:#home project:Work")
	if err != nil {
		t.Fatalf("parse show: %v", err)
	}
	if cmd.Show.Window != model.WindowNext7Days || cmd.Show.Tag != "home" || cmd.Show.Project != "Work" {
		t.Fatalf("unexpected show args: %+v", cmd.Show)
	}

	cmd, err = Parse("set 1 due tomorrow 9am")
	if err != nil {
		t.Fatalf("parse set: %v", err)
	}
	if cmd.Set.Field != FieldDate || cmd.Set.Value != "tomorrow 9am" {
		t.Fatalf("unexpected set args: %+v", cmd.Set)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{"done", "done zero", "done 0", "sub 2 2", "set 1 colour red", "set 1 p 7", "set 1 every year", "rename 1", "show someday", "add   ", "move 3"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("%q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if _, err := Parse(" / "); !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Text != "write docs" {
				t.Fatalf("unexpected title: %q", a.Text)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("show tasks")
	if err == nil {
		t.Fatalf("expected window error, got %+v", cmd)
	}
	cmd, err = Parse("show all")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}

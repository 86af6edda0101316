package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/gtdflow/internal/document"
	"github.com/sandeepkv93/gtdflow/internal/edit"
	"github.com/sandeepkv93/gtdflow/internal/model"
	"github.com/sandeepkv93/gtdflow/internal/when"
)

var literalDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?: \d{2}:\d{2})?$`)

// Env is what the mutating handlers need from their host. Visible is the
// task list the user numbers from; Apply commits one edit.
type Env struct {
	Snapshot func() edit.Snapshot
	Visible  func() []*model.Task
	Apply    func(edit.Op) error
	Now      func() time.Time
	Window   func() model.Window
}

// Bind fills every mutating handler. Show and Search stay nil because only
// the host knows how to present a view.
func Bind(env Env) Handlers {
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.Window == nil {
		env.Window = func() model.Window { return model.WindowNone }
	}
	b := binder{env: env}
	return Handlers{
		Add:     b.add,
		Done:    b.done,
		Delete:  b.delete,
		Move:    b.move,
		Sub:     b.sub,
		Set:     b.set,
		Project: b.project,
		Rename:  b.rename,
		Drop:    b.drop,
	}
}

type binder struct {
	env Env
}

func (b binder) task(index int) (*model.Task, error) {
	tasks := b.env.Visible()
	if index < 1 || index > len(tasks) {
		return nil, invalid("no task #%d (%d visible)", index, len(tasks))
	}
	return tasks[index-1], nil
}

func (b binder) heading(key int) (document.Heading, error) {
	headings := b.env.Snapshot().Doc().Headings
	if key < 1 || key > len(headings) {
		return document.Heading{}, invalid("no project #%d (%d total)", key, len(headings))
	}
	return headings[key-1], nil
}

func (b binder) commit(op edit.Op, msg string) (Result, error) {
	if err := b.env.Apply(op); err != nil {
		return Result{}, err
	}
	return Result{Message: msg}, nil
}

func (b binder) add(args AddArgs) (Result, error) {
	return b.commit(edit.Add{Text: args.Text, Window: b.env.Window(), Now: b.env.Now()}, "added")
}

func (b binder) done(args TargetArgs) (Result, error) {
	t, err := b.task(args.Index)
	if err != nil {
		return Result{}, err
	}
	msg := "completed " + strconv.Quote(t.Content)
	if t.Completed {
		msg = "reopened " + strconv.Quote(t.Content)
	}
	return b.commit(edit.Toggle{Line: t.LineIndex, Completed: t.Completed}, msg)
}

func (b binder) delete(args TargetArgs) (Result, error) {
	t, err := b.task(args.Index)
	if err != nil {
		return Result{}, err
	}
	return b.commit(edit.Delete{Line: t.LineIndex}, "deleted "+strconv.Quote(t.Content))
}

// move accepts a project number or a heading path.
func (b binder) move(args MoveArgs) (Result, error) {
	t, err := b.task(args.Index)
	if err != nil {
		return Result{}, err
	}
	op := edit.MoveToProject{Line: t.LineIndex}
	target := strings.TrimSpace(args.Project)
	if key, convErr := strconv.Atoi(strings.TrimPrefix(target, "#")); convErr == nil {
		h, err := b.heading(key)
		if err != nil {
			return Result{}, err
		}
		op.Key, target = h.Key, h.Path
	} else {
		if _, ok := b.env.Snapshot().Doc().HeadingByPath(target); !ok {
			if _, reserved := model.ReservedPath(target); !reserved {
				return Result{}, invalid("no project %q", target)
			}
		}
		op.Path = target
	}
	return b.commit(op, fmt.Sprintf("moved %q to %s", t.Content, target))
}

func (b binder) sub(args SubArgs) (Result, error) {
	t, err := b.task(args.Index)
	if err != nil {
		return Result{}, err
	}
	parent, err := b.task(args.Parent)
	if err != nil {
		return Result{}, err
	}
	return b.commit(edit.MakeSubtask{From: t.LineIndex, To: parent.LineIndex},
		fmt.Sprintf("%q is now under %q", t.Content, parent.Content))
}

func (b binder) set(args SetArgs) (Result, error) {
	t, err := b.task(args.Index)
	if err != nil {
		return Result{}, err
	}
	update, err := b.fieldUpdate(args)
	if err != nil {
		return Result{}, err
	}
	return b.commit(edit.Update{Line: t.LineIndex, Fields: update}, fmt.Sprintf("updated %s", args.Field))
}

func (b binder) fieldUpdate(args SetArgs) (edit.FieldUpdate, error) {
	value := strings.TrimSpace(args.Value)
	switch args.Field {
	case FieldText:
		return edit.FieldUpdate{Content: edit.Ptr(value)}, nil
	case FieldPriority:
		p, err := model.ParsePriority(value)
		if err != nil {
			return edit.FieldUpdate{}, invalid("%v", err)
		}
		return edit.FieldUpdate{Priority: edit.Ptr(p)}, nil
	case FieldEvery:
		r, err := model.ParseRecurrence(value)
		if err != nil {
			return edit.FieldUpdate{}, invalid("%v", err)
		}
		return edit.FieldUpdate{Recurrence: edit.Ptr(r)}, nil
	case FieldTimezone:
		if value != "" {
			if _, err := time.LoadLocation(value); err != nil {
				return edit.FieldUpdate{}, invalid("unknown timezone %q", value)
			}
		}
		return edit.FieldUpdate{Timezone: edit.Ptr(value)}, nil
	case FieldTags:
		tags := make([]string, 0)
		for _, tag := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
			if tag = strings.TrimPrefix(tag, "#"); tag != "" {
				tags = append(tags, tag)
			}
		}
		return edit.FieldUpdate{Tags: &tags}, nil
	case FieldDate:
		date, err := b.resolveDate(value)
		if err != nil {
			return edit.FieldUpdate{}, err
		}
		return edit.FieldUpdate{Date: edit.Ptr(date)}, nil
	default:
		return edit.FieldUpdate{}, invalid("unknown field %q", args.Field)
	}
}

// resolveDate takes a literal stamp or a date/time phrase such as
// "tomorrow 9am".
func (b binder) resolveDate(value string) (string, error) {
	if value == "" || literalDateRe.MatchString(value) {
		return value, nil
	}
	res := when.Extract(value, b.env.Now())
	if res.Date == "" {
		return "", invalid("cannot read a date from %q", value)
	}
	return res.Stamp(), nil
}

func (b binder) project(args ProjectArgs) (Result, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		name = b.env.Snapshot().UniqueProjectName()
	}
	return b.commit(edit.AddProject{Title: name}, "created project "+strconv.Quote(name))
}

func (b binder) rename(args ProjectArgs) (Result, error) {
	h, err := b.heading(args.Key)
	if err != nil {
		return Result{}, err
	}
	return b.commit(edit.RenameProject{Key: h.Key, NewName: args.Name},
		fmt.Sprintf("renamed %q to %q", h.Name, args.Name))
}

func (b binder) drop(args ProjectArgs) (Result, error) {
	h, err := b.heading(args.Key)
	if err != nil {
		return Result{}, err
	}
	return b.commit(edit.DeleteProject{Key: h.Key}, "deleted project "+strconv.Quote(h.Path))
}

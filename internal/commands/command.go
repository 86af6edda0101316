package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/gtdflow/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeDone    Type = "done"
	TypeDelete  Type = "delete"
	TypeMove    Type = "move"
	TypeSub     Type = "sub"
	TypeSet     Type = "set"
	TypeProject Type = "project"
	TypeRename  Type = "rename"
	TypeDrop    Type = "drop"
	TypeShow    Type = "show"
	TypeSearch  Type = "search"
)

var aliases = map[string]Type{
	"a":          TypeAdd,
	"x":          TypeDone,
	"toggle":     TypeDone,
	"del":        TypeDelete,
	"rm":         TypeDelete,
	"mv":         TypeMove,
	"newproject": TypeProject,
	"find":       TypeSearch,
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

type AddArgs struct {
	Text string
}

// TargetArgs addresses a task by its 1-based position in the visible list.
type TargetArgs struct {
	Index int
}

type MoveArgs struct {
	Index   int
	Project string
}

type SubArgs struct {
	Index  int
	Parent int
}

type Field string

const (
	FieldText     Field = "text"
	FieldPriority Field = "priority"
	FieldDate     Field = "date"
	FieldEvery    Field = "every"
	FieldTimezone Field = "tz"
	FieldTags     Field = "tags"
)

var fieldAliases = map[string]Field{
	"text": FieldText, "content": FieldText,
	"priority": FieldPriority, "p": FieldPriority, "pri": FieldPriority,
	"date": FieldDate, "due": FieldDate,
	"every": FieldEvery, "repeat": FieldEvery,
	"tz": FieldTimezone, "timezone": FieldTimezone,
	"tags": FieldTags, "tag": FieldTags,
}

// SetArgs changes one field. An empty Value clears it.
type SetArgs struct {
	Index int
	Field Field
	Value string
}

// ProjectArgs addresses a project by its 1-based position in the sidebar.
type ProjectArgs struct {
	Key  int
	Name string
}

type ShowArgs struct {
	Window  model.Window
	Tag     string
	Project string
}

type SearchArgs struct {
	Query string
}

type Command struct {
	Type    Type
	Raw     string
	Add     *AddArgs
	Target  *TargetArgs
	Move    *MoveArgs
	Sub     *SubArgs
	Set     *SetArgs
	Project *ProjectArgs
	Show    *ShowArgs
	Search  *SearchArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]
	typ := Type(head)
	if alias, ok := aliases[head]; ok {
		typ = alias
	}

	switch typ {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeDelete:
		return parseTarget(input, typ, args)
	case TypeMove:
		return parseMove(input, args)
	case TypeSub:
		return parseSub(input, args)
	case TypeSet:
		return parseSet(input, args)
	case TypeProject:
		return Command{Type: TypeProject, Raw: input, Project: &ProjectArgs{Name: strings.Join(args, " ")}}, nil
	case TypeRename, TypeDrop:
		return parseProject(input, typ, args)
	case TypeShow:
		return parseShow(input, args)
	case TypeSearch:
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Query: strings.Join(args, " ")}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseIndex(name, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(raw, "#"))
	if err != nil || n < 1 {
		return 0, invalid("%s must be a positive number, got %q", name, raw)
	}
	return n, nil
}

func parseAdd(raw string, args []string) (Command, error) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: text}}, nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires one task number", typ)
	}
	n, err := parseIndex("task", args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{Index: n}}, nil
}

func parseMove(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("move requires a task number and a project")
	}
	n, err := parseIndex("task", args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: TypeMove, Raw: raw, Move: &MoveArgs{Index: n, Project: strings.Join(args[1:], " ")}}, nil
}

func parseSub(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("sub requires a task number and a parent number")
	}
	n, err := parseIndex("task", args[0])
	if err != nil {
		return Command{}, err
	}
	parent, err := parseIndex("parent", args[1])
	if err != nil {
		return Command{}, err
	}
	if n == parent {
		return Command{}, invalid("a task cannot be its own parent")
	}
	return Command{Type: TypeSub, Raw: raw, Sub: &SubArgs{Index: n, Parent: parent}}, nil
}

func parseSet(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("set requires a task number and a field")
	}
	n, err := parseIndex("task", args[0])
	if err != nil {
		return Command{}, err
	}
	field, ok := fieldAliases[strings.ToLower(args[1])]
	if !ok {
		return Command{}, invalid("unknown field %q", args[1])
	}
	value := strings.Join(args[2:], " ")
	switch field {
	case FieldPriority:
		if value != "" {
			if _, err := model.ParsePriority(value); err != nil {
				return Command{}, invalid("%v", err)
			}
		}
	case FieldEvery:
		if _, err := model.ParseRecurrence(value); err != nil {
			return Command{}, invalid("%v", err)
		}
	case FieldText:
		if strings.TrimSpace(value) == "" {
			return Command{}, invalid("text cannot be empty")
		}
	}
	return Command{Type: TypeSet, Raw: raw, Set: &SetArgs{Index: n, Field: field, Value: value}}, nil
}

func parseProject(raw string, typ Type, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("%s requires a project number", typ)
	}
	key, err := parseIndex("project", args[0])
	if err != nil {
		return Command{}, err
	}
	name := strings.TrimSpace(strings.Join(args[1:], " "))
	if typ == TypeRename && name == "" {
		return Command{}, invalid("rename requires a new name")
	}
	return Command{Type: typ, Raw: raw, Project: &ProjectArgs{Key: key, Name: name}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	out := &ShowArgs{}
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "tag:"):
			out.Tag = strings.TrimPrefix(arg[len("tag:"):], "#")
		case strings.HasPrefix(lower, "project:"):
			out.Project = arg[len("project:"):]
		default:
			w, err := model.ParseWindow(lower)
			if err != nil {
				return Command{}, invalid("%v", err)
			}
			out.Window = w
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: out}, nil
}

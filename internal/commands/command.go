package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/protodo/internal/codec"
	"github.com/sandeepkv93/protodo/internal/model"
	"github.com/sandeepkv93/protodo/internal/projection"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeEdit    Type = "edit"
	TypeToggle  Type = "toggle"
	TypeSubtask Type = "subtask"
	TypeDelete  Type = "delete"
	TypeClear   Type = "clear"
	TypeImport  Type = "import"
	TypeExport  Type = "export"
	TypeShow    Type = "show"
	TypeTheme   Type = "theme"
	TypeDark    Type = "dark"
)

var aliases = map[string]Type{
	"done":   TypeToggle,
	"rm":     TypeDelete,
	"del":    TypeDelete,
	"filter": TypeShow,
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
	Text       string
	Due        *time.Time
	Priority   model.Priority
	Categories []string
	Repeat     model.Repeat
	Subtasks   []string
}

// EditArgs carries only the fields named in the command; nil means unchanged.
type EditArgs struct {
	ID         string
	Text       *string
	Due        *time.Time
	ClearDue   bool
	Priority   *model.Priority
	Categories []string
	Repeat     *model.Repeat
}

// TargetArgs addresses a task, and for subtask commands one of its subtasks.
type TargetArgs struct {
	ID        string
	SubtaskID string
}

// ShowArgs changes the task list view. Empty fields keep the current value;
// a non-nil Query replaces the search text, including with "".
type ShowArgs struct {
	Filter projection.Filter
	Sort   projection.SortKey
	Query  *string
}

type ThemeArgs struct {
	Theme model.Theme
}

type ImportArgs struct {
	Path string
}

type ExportArgs struct {
	Path   string
	Format codec.Format
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Edit   *EditArgs
	Target *TargetArgs
	Show   *ShowArgs
	Theme  *ThemeArgs
	Import *ImportArgs
	Export *ExportArgs
}

// Parse reads one palette line. Options are key:value tokens (due:, p:,
// cat:, repeat:, sub:, filter:, sort:, q:, format:); double quotes group
// words into one token. Everything else is free text.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts, err := tokenize(raw)
	if err != nil {
		return Command{}, err
	}
	head := strings.ToLower(parts[0])
	t := Type(head)
	if alias, ok := aliases[head]; ok {
		t = alias
	}
	args := splitArgs(parts[1:])

	switch t {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeToggle, TypeDelete:
		return parseTarget(input, t, args)
	case TypeSubtask:
		return parseSubtask(input, args)
	case TypeClear, TypeDark:
		return Command{Type: t, Raw: input}, nil
	case TypeShow:
		return parseShow(input, args)
	case TypeTheme:
		return parseTheme(input, args)
	case TypeImport:
		return parseImport(input, args)
	case TypeExport:
		return parseExport(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

type option struct {
	key   string
	value string
}

type parsedArgs struct {
	words   []string
	options []option
}

func (a parsedArgs) text() string {
	return strings.TrimSpace(strings.Join(a.words, " "))
}

func (a parsedArgs) lookup(keys ...string) (string, bool) {
	found, ok := "", false
	for _, opt := range a.options {
		for _, k := range keys {
			if opt.key == k {
				found, ok = opt.value, true
			}
		}
	}
	return found, ok
}

func (a parsedArgs) all(keys ...string) []string {
	var out []string
	for _, opt := range a.options {
		for _, k := range keys {
			if opt.key == k {
				out = append(out, opt.value)
			}
		}
	}
	return out
}

var optionKeys = map[string]string{
	"due":        "due",
	"p":          "priority",
	"priority":   "priority",
	"cat":        "categories",
	"cats":       "categories",
	"categories": "categories",
	"repeat":     "repeat",
	"r":          "repeat",
	"sub":        "sub",
	"filter":     "filter",
	"sort":       "sort",
	"q":          "query",
	"format":     "format",
}

func splitArgs(tokens []string) parsedArgs {
	var out parsedArgs
	for _, tok := range tokens {
		if k, v, ok := strings.Cut(tok, ":"); ok {
			if canonical, known := optionKeys[strings.ToLower(k)]; known {
				out.options = append(out.options, option{key: canonical, value: strings.TrimSpace(v)})
				continue
			}
		}
		out.words = append(out.words, tok)
	}
	return out
}

// tokenize splits on whitespace outside double quotes and strips the quotes.
func tokenize(s string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case !inQuote && (r == ' ' || r == '\t'):
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, invalid("unterminated quote")
	}
	if started {
		out = append(out, cur.String())
	}
	if len(out) == 0 {
		return nil, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	return out, nil
}

func parseAdd(raw string, args parsedArgs) (Command, error) {
	text := args.text()
	if text == "" {
		return Command{}, invalid("add requires task text")
	}
	add := &AddArgs{Text: text, Subtasks: args.all("sub")}
	if v, ok := args.lookup("due"); ok {
		due, err := model.ParseDue(v)
		if err != nil {
			return Command{}, invalid("due: %v", err)
		}
		add.Due = due
	}
	if v, ok := args.lookup("priority"); ok {
		p, err := model.ParsePriority(v)
		if err != nil {
			return Command{}, invalid("priority: %v", err)
		}
		add.Priority = p
	}
	if v, ok := args.lookup("categories"); ok {
		add.Categories = model.SplitCategories(v)
	}
	if v, ok := args.lookup("repeat"); ok {
		r, err := model.ParseRepeat(v)
		if err != nil {
			return Command{}, invalid("repeat: %v", err)
		}
		add.Repeat = r
	}
	return Command{Type: TypeAdd, Raw: raw, Add: add}, nil
}

func parseEdit(raw string, args parsedArgs) (Command, error) {
	if len(args.words) == 0 {
		return Command{}, invalid("edit requires a task id")
	}
	edit := &EditArgs{ID: args.words[0]}
	if text := strings.TrimSpace(strings.Join(args.words[1:], " ")); text != "" {
		edit.Text = &text
	}
	if v, ok := args.lookup("due"); ok {
		due, err := model.ParseDue(v)
		if err != nil {
			return Command{}, invalid("due: %v", err)
		}
		if due == nil {
			edit.ClearDue = true
		}
		edit.Due = due
	}
	if v, ok := args.lookup("priority"); ok {
		p, err := model.ParsePriority(v)
		if err != nil {
			return Command{}, invalid("priority: %v", err)
		}
		edit.Priority = &p
	}
	if v, ok := args.lookup("categories"); ok {
		edit.Categories = model.SplitCategories(v)
	}
	if v, ok := args.lookup("repeat"); ok {
		r, err := model.ParseRepeat(v)
		if err != nil {
			return Command{}, invalid("repeat: %v", err)
		}
		edit.Repeat = &r
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: edit}, nil
}

func parseTarget(raw string, t Type, args parsedArgs) (Command, error) {
	if len(args.words) != 1 {
		return Command{}, invalid("%s requires exactly one task id", t)
	}
	return Command{Type: t, Raw: raw, Target: &TargetArgs{ID: args.words[0]}}, nil
}

func parseSubtask(raw string, args parsedArgs) (Command, error) {
	if len(args.words) != 2 {
		return Command{}, invalid("subtask requires a task id and a subtask id")
	}
	return Command{Type: TypeSubtask, Raw: raw, Target: &TargetArgs{ID: args.words[0], SubtaskID: args.words[1]}}, nil
}

func parseShow(raw string, args parsedArgs) (Command, error) {
	show := &ShowArgs{}
	if v, ok := args.lookup("filter"); ok {
		f, err := projection.ParseFilter(v)
		if err != nil {
			return Command{}, invalid("filter: %v", err)
		}
		show.Filter = f
	}
	if v, ok := args.lookup("sort"); ok {
		k, err := projection.ParseSort(v)
		if err != nil {
			return Command{}, invalid("sort: %v", err)
		}
		show.Sort = k
	}
	if v, ok := args.lookup("query"); ok {
		show.Query = &v
	} else if text := args.text(); text != "" {
		show.Query = &text
	}
	return Command{Type: TypeShow, Raw: raw, Show: show}, nil
}

func parseTheme(raw string, args parsedArgs) (Command, error) {
	if len(args.words) != 1 {
		return Command{}, invalid("theme requires one of default, green, orange")
	}
	theme, err := model.ParseTheme(args.words[0])
	if err != nil {
		return Command{}, invalid("theme: %v", err)
	}
	return Command{Type: TypeTheme, Raw: raw, Theme: &ThemeArgs{Theme: theme}}, nil
}

func parseImport(raw string, args parsedArgs) (Command, error) {
	path := args.text()
	if path == "" {
		return Command{}, invalid("import requires a file path")
	}
	return Command{Type: TypeImport, Raw: raw, Import: &ImportArgs{Path: path}}, nil
}

func parseExport(raw string, args parsedArgs) (Command, error) {
	path := args.text()
	if path == "" {
		return Command{}, invalid("export requires a file path")
	}
	format := codec.FormatFromPath(path)
	if v, ok := args.lookup("format"); ok {
		f, err := codec.ParseFormat(v)
		if err != nil {
			return Command{}, invalid("format: %v", err)
		}
		format = f
	}
	return Command{Type: TypeExport, Raw: raw, Export: &ExportArgs{Path: path, Format: format}}, nil
}

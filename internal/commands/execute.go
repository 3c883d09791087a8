package commands

import (
	"fmt"

	"github.com/sandeepkv93/protodo/internal/model"
)

type Result struct {
	Message string
	// Task is the task the command created or changed, when there is one.
	Task *model.Task
	// Show echoes a show command so the caller can apply it to its view.
	Show *ShowArgs
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Edit    func(EditArgs) (Result, error)
	Toggle  func(TargetArgs) (Result, error)
	Subtask func(TargetArgs) (Result, error)
	Delete  func(TargetArgs) (Result, error)
	Clear   func() (Result, error)
	Import  func(ImportArgs) (Result, error)
	Export  func(ExportArgs) (Result, error)
	Show    func(ShowArgs) (Result, error)
	Theme   func(ThemeArgs) (Result, error)
	Dark    func() (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func malformed(t Type) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s command has no arguments", t)}
}

// Execute routes cmd to exactly one handler.
func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		if cmd.Add == nil {
			return Result{}, malformed(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeEdit:
		if handlers.Edit == nil {
			return Result{}, missing(cmd.Type)
		}
		if cmd.Edit == nil {
			return Result{}, malformed(cmd.Type)
		}
		return handlers.Edit(*cmd.Edit)
	case TypeToggle, TypeSubtask, TypeDelete:
		var h func(TargetArgs) (Result, error)
		switch cmd.Type {
		case TypeToggle:
			h = handlers.Toggle
		case TypeSubtask:
			h = handlers.Subtask
		default:
			h = handlers.Delete
		}
		if h == nil {
			return Result{}, missing(cmd.Type)
		}
		if cmd.Target == nil {
			return Result{}, malformed(cmd.Type)
		}
		return h(*cmd.Target)
	case TypeClear:
		if handlers.Clear == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Clear()
	case TypeImport:
		if handlers.Import == nil {
			return Result{}, missing(cmd.Type)
		}
		if cmd.Import == nil {
			return Result{}, malformed(cmd.Type)
		}
		return handlers.Import(*cmd.Import)
	case TypeExport:
		if handlers.Export == nil {
			return Result{}, missing(cmd.Type)
		}
		if cmd.Export == nil {
			return Result{}, malformed(cmd.Type)
		}
		return handlers.Export(*cmd.Export)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing(cmd.Type)
		}
		if cmd.Show == nil {
			return Result{}, malformed(cmd.Type)
		}
		return handlers.Show(*cmd.Show)
	case TypeTheme:
		if handlers.Theme == nil {
			return Result{}, missing(cmd.Type)
		}
		if cmd.Theme == nil {
			return Result{}, malformed(cmd.Type)
		}
		return handlers.Theme(*cmd.Theme)
	case TypeDark:
		if handlers.Dark == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Dark()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

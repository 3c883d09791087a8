// Package store owns the task collection and the settings, persisting both
// through a storage.KV after every mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sandeepkv93/protodo/internal/model"
	"github.com/sandeepkv93/protodo/internal/storage"
)

type Options struct {
	Logger *log.Logger
	Now    func() time.Time
	NewID  func() string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Store is the task collection. Lookups by id resolve to the first match;
// Delete removes every task carrying the id, since imports may duplicate ids.
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	tasks  []model.Task
	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

func New(kv storage.KV, opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{
		kv:     kv,
		tasks:  make([]model.Task, 0),
		logger: opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
	}
}

// CreateInput carries the fields of a new task. Priority may be empty, in
// which case it is suggested from Text. CategoryText is split on commas and
// only used when Categories is nil.
type CreateInput struct {
	Text         string
	Due          *time.Time
	Priority     model.Priority
	Categories   []string
	CategoryText string
	Subtasks     []string
	Repeat       model.Repeat
}

// Patch holds a partial update. Nil fields are left unchanged.
type Patch struct {
	Text       *string
	Due        *time.Time
	ClearDue   bool
	Priority   *model.Priority
	Categories []string
	Repeat     *model.Repeat
	Subtasks   []model.Subtask
}

// Load replaces the in-memory collection with the persisted one. A missing or
// corrupt blob yields an empty collection.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = make([]model.Task, 0)
	raw, err := s.kv.Get(ctx, storage.KeyTasks)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		s.logger.Printf("[store] load tasks failed, starting empty: %v", err)
		return nil
	}
	var loaded []model.Task
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.logger.Printf("[store] persisted tasks are corrupt, starting empty: %v", err)
		return nil
	}
	if loaded != nil {
		s.tasks = loaded
	}
	return nil
}

func (s *Store) saveLocked(ctx context.Context) {
	b, err := json.Marshal(s.tasks)
	if err != nil {
		s.logger.Printf("[store] encode tasks failed: %v", err)
		return
	}
	if err := s.kv.Set(ctx, storage.KeyTasks, b); err != nil {
		s.logger.Printf("[store] persist tasks failed: %v", err)
	}
}

func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Store) Create(ctx context.Context, in CreateInput) (model.Task, error) {
	text := strings.TrimSpace(in.Text)
	priority := in.Priority
	if priority == "" && text != "" {
		priority = model.SuggestPriority(text)
	}
	categories := in.Categories
	if categories == nil {
		categories = model.SplitCategories(in.CategoryText)
	}
	var subtasks []model.Subtask
	for _, st := range in.Subtasks {
		st = strings.TrimSpace(st)
		if st == "" {
			continue
		}
		subtasks = append(subtasks, model.Subtask{ID: s.newID(), Text: st})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task := model.Task{
		ID:         s.newID(),
		Text:       text,
		Created:    s.stamp(),
		Priority:   priority,
		Categories: append([]string(nil), categories...),
		Subtasks:   subtasks,
		Repeat:     in.Repeat.OrNone(),
	}
	if in.Due != nil {
		due := in.Due.UTC()
		task.Due = &due
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	s.tasks = append(s.tasks, task)
	s.saveLocked(ctx)
	return task.Clone(), nil
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return fmt.Errorf("%w: %q", model.ErrNotFound, id)
}

func (s *Store) Get(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, notFound(id)
	}
	return s.tasks[i].Clone(), nil
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Store) Update(ctx context.Context, id string, p Patch) (model.Task, error) {
	if p.Priority != nil && !p.Priority.IsValid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidPriority, *p.Priority)
	}
	if p.Repeat != nil && !p.Repeat.OrNone().IsValid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidRepeat, *p.Repeat)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, notFound(id)
	}
	t := &s.tasks[i]
	if p.Text != nil {
		if text := strings.TrimSpace(*p.Text); text != "" {
			t.Text = text
		}
	}
	switch {
	case p.ClearDue:
		t.Due = nil
	case p.Due != nil:
		due := p.Due.UTC()
		t.Due = &due
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Categories != nil {
		t.Categories = append([]string(nil), p.Categories...)
	}
	if p.Repeat != nil {
		t.Repeat = p.Repeat.OrNone()
	}
	if p.Subtasks != nil {
		t.Subtasks = append([]model.Subtask(nil), p.Subtasks...)
	}
	s.saveLocked(ctx)
	return t.Clone(), nil
}

// ToggleComplete flips the completed flag. Completing a repeating task with a
// due date appends its successor.
func (s *Store) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, notFound(id)
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	toggled := s.tasks[i].Clone()
	if toggled.Completed && toggled.IsRepeating() {
		if next, ok := model.NextOccurrence(toggled, s.newID(), s.stamp()); ok {
			s.tasks = append(s.tasks, next)
		}
	}
	s.saveLocked(ctx)
	return toggled, nil
}

func (s *Store) ToggleSubtask(ctx context.Context, id, subtaskID string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, notFound(id)
	}
	t := &s.tasks[i]
	for j := range t.Subtasks {
		if t.Subtasks[j].ID == subtaskID {
			t.Subtasks[j].Done = !t.Subtasks[j].Done
			s.saveLocked(ctx)
			return t.Clone(), nil
		}
	}
	return model.Task{}, fmt.Errorf("%w: subtask %q of %q", model.ErrNotFound, subtaskID, id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	removed := 0
	for _, t := range s.tasks {
		if t.ID == id {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	if removed == 0 {
		return notFound(id)
	}
	s.saveLocked(ctx)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make([]model.Task, 0)
	s.saveLocked(ctx)
	return nil
}

// ImportMany appends tasks verbatim, without id collision checks.
func (s *Store) ImportMany(ctx context.Context, tasks []model.Task) (int, error) {
	if tasks == nil {
		return 0, fmt.Errorf("%w: import requires a list of tasks", model.ErrFormat)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		s.tasks = append(s.tasks, t.Clone())
	}
	s.saveLocked(ctx)
	return len(tasks), nil
}

// StampNotified records that a reminder fired for the task.
func (s *Store) StampNotified(ctx context.Context, id string, at time.Time) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, notFound(id)
	}
	stamp := at.UTC().Truncate(time.Millisecond)
	s.tasks[i].LastNotified = &stamp
	s.saveLocked(ctx)
	return s.tasks[i].Clone(), nil
}

// Progress reports completed and total counts and the rounded percentage.
func (s *Store) Progress() (done, total, pct int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total = len(s.tasks)
	for _, t := range s.tasks {
		if t.Completed {
			done++
		}
	}
	if total == 0 {
		return 0, 0, 0
	}
	return done, total, int(math.Round(float64(done) / float64(total) * 100))
}

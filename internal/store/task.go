package store

import (
	"context"
	"time"

	"github.com/Nicolasvals/discord-bot-plantaciones/internal/domain"
)

// TaskPatch is a shallow merge applied to a stored cooldown task.
type TaskPatch struct {
	ReadyAt            *time.Time
	NotifiedForReadyAt *time.Time
	DMChannelID        *string
	Completed          *bool
}

func applyTaskPatch(t *domain.CooldownTask, patch TaskPatch) {
	if patch.ReadyAt != nil {
		t.ReadyAt = *patch.ReadyAt
	}
	if patch.NotifiedForReadyAt != nil {
		t.NotifiedForReadyAt = *patch.NotifiedForReadyAt
	}
	if patch.DMChannelID != nil {
		t.DMChannelID = *patch.DMChannelID
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
}

// ReplaceTask stores t as the single task for its (owner, kind) pair,
// removing any previous instance, and assigns a fresh ID.
func (s *Store) ReplaceTask(ctx context.Context, t domain.CooldownTask) (domain.CooldownTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := 0
	next := make([]domain.CooldownTask, 0, len(s.tasks)+1)
	for i := range s.tasks {
		if s.tasks[i].ID > maxID {
			maxID = s.tasks[i].ID
		}
		if s.tasks[i].OwnerID == t.OwnerID && s.tasks[i].Kind == t.Kind {
			continue
		}
		next = append(next, s.tasks[i])
	}
	t.ID = maxID + 1
	next = append(next, t)

	if err := s.persistTasks(next); err != nil {
		return domain.CooldownTask{}, err
	}
	return t, nil
}

// GetTask returns the task with the given ID.
func (s *Store) GetTask(ctx context.Context, id int) (domain.CooldownTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return s.tasks[i], nil
		}
	}
	return domain.CooldownTask{}, domain.ErrTaskNotFound
}

// GetTaskByOwnerKind returns the owner's task of the given kind.
func (s *Store) GetTaskByOwnerKind(ctx context.Context, ownerID string, kind domain.TaskKind) (domain.CooldownTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].OwnerID == ownerID && s.tasks[i].Kind == kind {
			return s.tasks[i], nil
		}
	}
	return domain.CooldownTask{}, domain.ErrTaskNotFound
}

// PatchTask shallow-merges patch into the stored task and persists.
func (s *Store) PatchTask(ctx context.Context, id int, patch TaskPatch) (domain.CooldownTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.CooldownTask, len(s.tasks))
	copy(next, s.tasks)

	for i := range next {
		if next[i].ID != id {
			continue
		}
		applyTaskPatch(&next[i], patch)
		if err := s.persistTasks(next); err != nil {
			return domain.CooldownTask{}, err
		}
		return next[i], nil
	}
	return domain.CooldownTask{}, domain.ErrTaskNotFound
}

// DeleteTask removes the task from the store.
func (s *Store) DeleteTask(ctx context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.CooldownTask, 0, len(s.tasks))
	found := false
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			found = true
			continue
		}
		next = append(next, s.tasks[i])
	}
	if !found {
		return false, nil
	}
	if err := s.persistTasks(next); err != nil {
		return false, err
	}
	return true, nil
}

// ListTasks returns all tasks. With activeOnly set, completed tasks are skipped.
func (s *Store) ListTasks(ctx context.Context, activeOnly bool) ([]domain.CooldownTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CooldownTask, 0, len(s.tasks))
	for i := range s.tasks {
		if activeOnly && s.tasks[i].Completed {
			continue
		}
		out = append(out, s.tasks[i])
	}
	return out, nil
}

// ListTasksByOwner returns all non-completed tasks for one owner.
func (s *Store) ListTasksByOwner(ctx context.Context, ownerID string) ([]domain.CooldownTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CooldownTask, 0, 2)
	for i := range s.tasks {
		if s.tasks[i].OwnerID == ownerID && !s.tasks[i].Completed {
			out = append(out, s.tasks[i])
		}
	}
	return out, nil
}

package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/prepiq-api/internal/model"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	// ErrStaleTurn rejects an import result for text that has since changed
	ErrStaleTurn = errors.New("draft changed since import started")
)

// DraftRepo keeps resume drafts in memory. Nothing is persisted.
// All reads return copies so callers never share a draft with the map.
type DraftRepo struct {
	mu     sync.RWMutex
	drafts map[uuid.UUID]*model.ResumeDraft
	now    func() time.Time
}

func NewDraftRepo() *DraftRepo {
	return &DraftRepo{
		drafts: make(map[uuid.UUID]*model.ResumeDraft),
		now:    time.Now,
	}
}

func (r *DraftRepo) Create(ownerUID, text string) *model.ResumeDraft {
	now := r.now()
	d := &model.ResumeDraft{
		ID:        uuid.New(),
		OwnerUID:  ownerUID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.drafts[d.ID] = d
	r.mu.Unlock()

	cp := *d
	return &cp
}

// Get returns the draft if it exists and belongs to ownerUID
func (r *DraftRepo) Get(id uuid.UUID, ownerUID string) (*model.ResumeDraft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, err := r.owned(id, ownerUID)
	if err != nil {
		return nil, err
	}
	cp := *d
	return &cp, nil
}

// SetText replaces the draft text with a manual edit.
// An import still running for this draft becomes stale.
func (r *DraftRepo) SetText(id uuid.UUID, ownerUID, text string) (*model.ResumeDraft, error) {
	return r.update(id, ownerUID, func(d *model.ResumeDraft) {
		d.Text = text
		d.Placeholder = false
		d.ParseError = ""
		d.Importing = false
		d.Turn++
	})
}

// BeginImport marks an upload in progress and returns the turn its result must match
func (r *DraftRepo) BeginImport(id uuid.UUID, ownerUID, fileName string) (uint64, error) {
	d, err := r.update(id, ownerUID, func(d *model.ResumeDraft) {
		d.FileName = fileName
		d.ParseError = ""
		d.Importing = true
		d.Turn++
	})
	if err != nil {
		return 0, err
	}
	return d.Turn, nil
}

// CompleteImport stores extracted text if the draft is still at turn
func (r *DraftRepo) CompleteImport(id uuid.UUID, turn uint64, ext *model.Extraction) error {
	return r.finishImport(id, turn, func(d *model.ResumeDraft) {
		d.Text = ext.Text
		d.Placeholder = ext.Placeholder
		d.ParseError = ""
		d.Turn++
	})
}

// FailImport records the user-facing extraction error if the draft is still at turn.
// The previous text is dropped so it is never graded under the failed file's name.
func (r *DraftRepo) FailImport(id uuid.UUID, turn uint64, message string) error {
	return r.finishImport(id, turn, func(d *model.ResumeDraft) {
		d.Text = ""
		d.Placeholder = false
		d.ParseError = message
		d.Turn++
	})
}

// Clear empties the text, file name and error
func (r *DraftRepo) Clear(id uuid.UUID, ownerUID string) (*model.ResumeDraft, error) {
	return r.update(id, ownerUID, func(d *model.ResumeDraft) {
		d.Text = ""
		d.FileName = ""
		d.ParseError = ""
		d.Placeholder = false
		d.Importing = false
		d.Turn++
	})
}

func (r *DraftRepo) Delete(id uuid.UUID, ownerUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.owned(id, ownerUID); err != nil {
		return err
	}
	delete(r.drafts, id)
	return nil
}

// ExpireIdle removes drafts not updated within maxIdle and returns their IDs
func (r *DraftRepo) ExpireIdle(maxIdle time.Duration) []uuid.UUID {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []uuid.UUID
	for id, d := range r.drafts {
		if d.UpdatedAt.Before(cutoff) {
			delete(r.drafts, id)
			expired = append(expired, id)
		}
	}
	return expired
}

// Len reports how many drafts are held
func (r *DraftRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.drafts)
}

// ── internals ─────────────────────────────────────────

// owned must be called with mu held
func (r *DraftRepo) owned(id uuid.UUID, ownerUID string) (*model.ResumeDraft, error) {
	d, ok := r.drafts[id]
	if !ok || d.OwnerUID != ownerUID {
		return nil, ErrDraftNotFound
	}
	return d, nil
}

func (r *DraftRepo) update(id uuid.UUID, ownerUID string, fn func(*model.ResumeDraft)) (*model.ResumeDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.owned(id, ownerUID)
	if err != nil {
		return nil, err
	}
	fn(d)
	d.UpdatedAt = r.now()

	cp := *d
	return &cp, nil
}

func (r *DraftRepo) finishImport(id uuid.UUID, turn uint64, fn func(*model.ResumeDraft)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drafts[id]
	if !ok {
		return ErrDraftNotFound
	}
	if !d.Importing || d.Turn != turn {
		return ErrStaleTurn
	}
	fn(d)
	d.Importing = false
	d.UpdatedAt = r.now()
	return nil
}

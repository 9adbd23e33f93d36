package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/prepiq-api/internal/model"
	"github.com/yourusername/prepiq-api/internal/repository"
)

const (
	// MinResumeChars is the shortest trimmed resume accepted for analysis
	MinResumeChars = 50
	// strengthFullChars is the resume length that scores full strength
	strengthFullChars = 500
)

var ErrImportInProgress = errors.New("resume import still in progress")

type skillMemo struct {
	turn   uint64
	skills []string
}

// DraftService manages resume drafts and their background file imports
type DraftService struct {
	repo           *repository.DraftRepo
	extractor      *Extractor
	extractTimeout time.Duration

	mu     sync.Mutex
	skills map[uuid.UUID]skillMemo

	imports sync.WaitGroup
}

func NewDraftService(repo *repository.DraftRepo, extractor *Extractor, extractTimeout time.Duration) *DraftService {
	return &DraftService{
		repo:           repo,
		extractor:      extractor,
		extractTimeout: extractTimeout,
		skills:         make(map[uuid.UUID]skillMemo),
	}
}

func (s *DraftService) Create(ownerUID, text string) *model.DraftView {
	return s.view(s.repo.Create(ownerUID, text))
}

func (s *DraftService) Get(id uuid.UUID, ownerUID string) (*model.DraftView, error) {
	d, err := s.repo.Get(id, ownerUID)
	if err != nil {
		return nil, err
	}
	return s.view(d), nil
}

func (s *DraftService) SetText(id uuid.UUID, ownerUID, text string) (*model.DraftView, error) {
	d, err := s.repo.SetText(id, ownerUID, text)
	if err != nil {
		return nil, err
	}
	return s.view(d), nil
}

func (s *DraftService) Clear(id uuid.UUID, ownerUID string) (*model.DraftView, error) {
	d, err := s.repo.Clear(id, ownerUID)
	if err != nil {
		return nil, err
	}
	return s.view(d), nil
}

func (s *DraftService) Delete(id uuid.UUID, ownerUID string) error {
	if err := s.repo.Delete(id, ownerUID); err != nil {
		return err
	}
	s.forget(id)
	return nil
}

// StartImport buffers the upload and extracts it on a background goroutine.
// The returned turn identifies the import; a newer edit or import supersedes it.
func (s *DraftService) StartImport(id uuid.UUID, ownerUID, fileName, declaredType string, r io.Reader) (uint64, error) {
	if _, err := s.repo.Get(id, ownerUID); err != nil {
		return 0, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.extractor.MaxBytes()+1))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	if int64(len(data)) > s.extractor.MaxBytes() {
		return 0, ErrFileTooLarge
	}

	turn, err := s.repo.BeginImport(id, ownerUID, fileName)
	if err != nil {
		return 0, err
	}

	s.imports.Add(1)
	go s.runImport(id, turn, fileName, declaredType, data)

	return turn, nil
}

func (s *DraftService) runImport(id uuid.UUID, turn uint64, fileName, declaredType string, data []byte) {
	defer s.imports.Done()

	logger := log.With().Str("draftId", id.String()).Uint64("turn", turn).Str("filename", fileName).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Resume import panicked")
			_ = s.repo.FailImport(id, turn, UserMessage(ErrReadFailed))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.extractTimeout)
	defer cancel()

	ext, err := s.extractor.Extract(ctx, fileName, declaredType, bytes.NewReader(data))
	if err != nil {
		logger.Warn().Err(err).Msg("Resume import failed")
		if ferr := s.repo.FailImport(id, turn, UserMessage(err)); ferr != nil {
			logger.Info().Err(ferr).Msg("Discarding import error")
		}
		return
	}

	if err := s.repo.CompleteImport(id, turn, ext); err != nil {
		logger.Info().Err(err).Msg("Discarding import result")
		return
	}

	logger.Info().
		Str("format", ext.Format).
		Bool("placeholder", ext.Placeholder).
		Int("chars", utf8.RuneCountInString(ext.Text)).
		Msg("Resume imported")
}

// Wait blocks until in-flight imports finish
func (s *DraftService) Wait() {
	s.imports.Wait()
}

// ResumeText returns draft text usable as grading context
func (s *DraftService) ResumeText(id uuid.UUID, ownerUID string) (string, error) {
	d, err := s.repo.Get(id, ownerUID)
	if err != nil {
		return "", err
	}
	switch {
	case d.Importing:
		return "", ErrImportInProgress
	case d.Placeholder:
		return "", ErrPlaceholderContent
	}
	return d.Text, nil
}

// ExpireIdle drops drafts idle longer than maxIdle
func (s *DraftService) ExpireIdle(maxIdle time.Duration) int {
	expired := s.repo.ExpireIdle(maxIdle)
	for _, id := range expired {
		s.forget(id)
	}
	return len(expired)
}

// RunExpiry sweeps idle drafts every interval until ctx is done
func (s *DraftService) RunExpiry(ctx context.Context, maxIdle, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.ExpireIdle(maxIdle); n > 0 {
				log.Info().Int("expired", n).Msg("Expired idle resume drafts")
			}
		}
	}
}

// ── Derived values ────────────────────────────────────

func (s *DraftService) view(d *model.ResumeDraft) *model.DraftView {
	chars := utf8.RuneCountInString(d.Text)

	return &model.DraftView{
		ResumeDraft: *d,
		Skills:      s.skillsFor(d),
		WordCount:   len(strings.Fields(d.Text)),
		Strength:    ResumeStrength(chars),
		Ready:       !d.Importing && !d.Placeholder && utf8.RuneCountInString(strings.TrimSpace(d.Text)) >= MinResumeChars,
	}
}

// skillsFor recomputes skills only when the draft turn has moved
func (s *DraftService) skillsFor(d *model.ResumeDraft) []string {
	if d.Placeholder {
		return []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.skills[d.ID]; ok && m.turn == d.Turn {
		return append([]string{}, m.skills...)
	}

	skills := DetectSkills(d.Text)
	s.skills[d.ID] = skillMemo{turn: d.Turn, skills: skills}
	return append([]string{}, skills...)
}

func (s *DraftService) forget(id uuid.UUID) {
	s.mu.Lock()
	delete(s.skills, id)
	s.mu.Unlock()
}

// ResumeStrength scores resume length from 0 to 100
func ResumeStrength(chars int) int {
	return min(100, chars*100/strengthFullChars)
}

package repository

import (
	"context"
	"sync"

	"github.com/amirphl/Kushinada-Labeling/models"
)

// sessionRepositoryImpl keeps the session in process memory, guarded by a
// read-write mutex so readers never observe a half-applied tag toggle. There
// is no persistence: losing the process loses the session, which is a defined
// and accepted property of the tool.
type sessionRepositoryImpl struct {
	mu      sync.RWMutex
	session *models.Session
}

// NewSessionRepository creates the in-memory session repository.
func NewSessionRepository() SessionRepository {
	return &sessionRepositoryImpl{}
}

func (r *sessionRepositoryImpl) Initialize(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = session.Clone()
	return nil
}

func (r *sessionRepositoryImpl) Current(_ context.Context) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session.Clone(), nil
}

func (r *sessionRepositoryImpl) ToggleTag(_ context.Context, imageID, tag string) (*models.ImageItem, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return nil, false, nil
	}
	img := r.session.FindImage(imageID)
	if img == nil {
		return nil, false, nil
	}

	if img.HasTag(tag) {
		kept := img.Tags[:0]
		for _, t := range img.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		img.Tags = kept
	} else {
		img.Tags = append(img.Tags, tag)
	}

	cp := *img
	cp.Tags = append([]string(nil), img.Tags...)
	return &cp, true, nil
}

func (r *sessionRepositoryImpl) Reset(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = nil
	return nil
}

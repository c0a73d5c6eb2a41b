package live

import (
	"sort"
	"time"

	"liveclass-backend/internal/models"
)

// Store maps a course id to its live Session. It is not safe for
// concurrent use: every mutation must happen on the hub's event loop,
// which serializes all session traffic. Entries are removed the instant
// their participant map empties, so memory is bounded by concurrently
// active classes.
type Store struct {
	sessions map[string]*models.Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*models.Session)}
}

// GetOrCreate returns the session for courseID, creating an empty one
// if none is live.
func (s *Store) GetOrCreate(courseID string) *models.Session {
	if session, ok := s.sessions[courseID]; ok {
		return session
	}
	session := &models.Session{
		CourseID:     courseID,
		Participants: make(map[string]*models.Participant),
		ChatMessages: []models.ChatMessage{},
		StartTime:    time.Now(),
	}
	s.sessions[courseID] = session
	return session
}

func (s *Store) Get(courseID string) (*models.Session, bool) {
	session, ok := s.sessions[courseID]
	return session, ok
}

func (s *Store) Remove(courseID string) {
	delete(s.sessions, courseID)
}

func (s *Store) Len() int {
	return len(s.sessions)
}

// Active returns all live sessions ordered by start time.
func (s *Store) Active() []*models.Session {
	out := make([]*models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].CourseID < out[j].CourseID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

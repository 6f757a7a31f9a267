package web

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/peterkuimelis/cct/internal/task"
)

// SessionStatus is the lifecycle state of a browser session.
type SessionStatus string

const (
	StatusActive   SessionStatus = "active"
	StatusFinished SessionStatus = "finished"
	StatusFailed   SessionStatus = "failed"
)

// Session is one participant's run of the task.
type Session struct {
	ID          string
	Participant string
	Started     time.Time
	Ended       time.Time
	Status      SessionStatus
	Err         string
	Records     task.Records
}

// SessionInfo is the JSON listing entry for /api/sessions.
type SessionInfo struct {
	ID          string        `json:"id"`
	Participant string        `json:"participant,omitempty"`
	Status      SessionStatus `json:"status"`
	Started     time.Time     `json:"started"`
	Ended       *time.Time    `json:"ended,omitempty"`
	Error       string        `json:"error,omitempty"`
	Records     int           `json:"records"`
	FinalScore  int           `json:"final_score"`
}

// SessionManager tracks sessions by ID. Records live only as long as the
// process.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create registers a new active session with a fresh ID.
func (m *SessionManager) Create(participant string) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		Participant: participant,
		Started:     m.now(),
		Status:      StatusActive,
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Finish stores the records of a session and marks it finished, or failed
// when err is non-nil. Records collected before a failure are kept.
func (m *SessionManager) Finish(id string, records task.Records, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return
	}
	s.Records = records
	s.Ended = m.now()
	s.Status = StatusFinished
	if err != nil {
		s.Status = StatusFailed
		s.Err = err.Error()
	}
}

// Records returns a copy of the records of a session.
func (m *SessionManager) Records(id string) (task.Records, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return append(task.Records{}, s.Records...), true
}

// List returns every session, oldest first.
func (m *SessionManager) List() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		info := SessionInfo{
			ID:          s.ID,
			Participant: s.Participant,
			Status:      s.Status,
			Started:     s.Started,
			Error:       s.Err,
			Records:     len(s.Records),
			FinalScore:  task.Summarize(s.Records).FinalScore,
		}
		if !s.Ended.IsZero() {
			ended := s.Ended
			info.Ended = &ended
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Started.Equal(out[j].Started) {
			return out[i].ID < out[j].ID
		}
		return out[i].Started.Before(out[j].Started)
	})
	return out
}

package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	cctlog "github.com/peterkuimelis/cct/internal/log"
	cctnet "github.com/peterkuimelis/cct/internal/net"
	"github.com/peterkuimelis/cct/internal/runner"
	"github.com/peterkuimelis/cct/internal/task"
)

//go:embed static
var staticFiles embed.FS

// Server is the cct web UI server. Every WebSocket connection runs its own
// task session.
type Server struct {
	opts     task.Options
	seed     int64
	sessions *SessionManager
	mux      *http.ServeMux

	// Schedule overrides the runner's timer, for tests.
	Schedule func(d time.Duration, fire func())
}

// NewServer creates a web server for the task options in taskFile (defaults
// when empty). A seed of 0 seeds every session randomly.
func NewServer(taskFile string, seed int64) (*Server, error) {
	opts, err := task.LoadOptions(taskFile)
	if err != nil {
		return nil, fmt.Errorf("load task options: %w", err)
	}
	return New(opts, seed), nil
}

// New creates a web server for already validated options.
func New(opts task.Options, seed int64) *Server {
	s := &Server{
		opts:     opts,
		seed:     seed,
		sessions: NewSessionManager(),
		mux:      http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// Sessions returns the server's session registry.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

func (s *Server) setupRoutes() {
	// Embedded static files
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f.(io.Reader))
	})

	// Static CSS/JS
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// API endpoints
	s.mux.HandleFunc("GET /api/config", s.handleConfig)
	s.mux.HandleFunc("GET /api/sessions", s.handleSessions)
	s.mux.HandleFunc("GET /api/sessions/{id}/data", s.handleSessionData)

	// Task sessions
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write JSON: %v", err)
	}
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.opts)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.sessions.List())
}

func (s *Server) handleSessionData(w http.ResponseWriter, r *http.Request) {
	records, ok := s.sessions.Records(r.PathValue("id"))
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	if records == nil {
		records = task.Records{}
	}
	writeJSON(w, records)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()

	// Read the join message from the browser
	var join cctnet.ClientMessage
	if err := wsjson.Read(ctx, wsConn, &join); err != nil {
		log.Printf("WebSocket read join: %v", err)
		return
	}
	if join.Type != cctnet.MsgJoin {
		wsConn.Close(websocket.StatusPolicyViolation, "expected join message")
		return
	}

	sess := s.sessions.Create(join.Participant)
	log.Printf("session %s started (participant %q)", sess.ID, join.Participant)

	p := newWSParticipant(ctx, wsConn)
	rn := runner.New(runner.Config{
		SessionID: sess.ID,
		Logger:    cctlog.NewMemoryLogger(),
		Schedule:  s.Schedule,
	}, p)
	tk := task.New(task.Config{Seed: s.seed, Logger: rn.Logger()})

	records, err := rn.Run(ctx, tk.CreateTimeline(rn, s.opts))
	s.sessions.Finish(sess.ID, records, err)
	if err != nil {
		log.Printf("session %s ended: %v", sess.ID, err)
		wsConn.Close(websocket.StatusInternalError, "task error")
		return
	}

	if err := p.sendTaskOver(ctx, sess.ID, records); err != nil {
		log.Printf("session %s: send task_over: %v", sess.ID, err)
		return
	}
	log.Printf("session %s finished: %d records", sess.ID, len(records))
	wsConn.Close(websocket.StatusNormalClosure, "task complete")
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// control serves the external interface of a running inspector session
//
// Every route runs its work on the session goroutine through Session.Do, so
// handlers never touch session state directly.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/nathants/inspector/lib/session"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16384,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type server struct {
	sess   *session.Session
	logger *log.Logger
}

// NewHandler builds the control API router for sess.
func NewHandler(sess *session.Session, logger *log.Logger) http.Handler {
	s := &server{sess: sess, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/activate", s.signal((*session.Session).Activate))
	r.Post("/toggle", s.signal((*session.Session).Toggle))
	r.Post("/picker", s.signal((*session.Session).TogglePicker))
	r.Post("/deactivate", s.signal((*session.Session).Deactivate))
	r.Post("/clear", s.signal(func(s *session.Session, _ context.Context) error {
		s.ClearAll()
		return nil
	}))

	r.Get("/state", s.stateHandler)
	r.Get("/panels", s.panelsHandler)
	r.Delete("/panels/{id}", s.closePanelHandler)
	r.Post("/panels/{id}/inspect", s.inspectPanelHandler)
	r.Get("/feed", s.feedHandler)
	return r
}

// Serve runs the control API on addr until ctx is done.
func Serve(ctx context.Context, addr string, sess *session.Session, logger *log.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           NewHandler(sess, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("control api listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrInactive):
		status = http.StatusConflict
	case errors.Is(err, errNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.logger.Warn("control request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var errNotFound = errors.New("panel not found")

func (s *server) signal(fn func(*session.Session, context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.sess.Do(r.Context(), func(ctx context.Context, sess *session.Session) error {
			return fn(sess, ctx)
		})
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *server) stateHandler(w http.ResponseWriter, r *http.Request) {
	var st session.Status
	err := s.sess.Do(r.Context(), func(_ context.Context, sess *session.Session) error {
		st = sess.Status()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) panelsHandler(w http.ResponseWriter, r *http.Request) {
	var panels []session.PanelInfo
	err := s.sess.Do(r.Context(), func(_ context.Context, sess *session.Session) error {
		panels = sess.Panels()
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, panels)
}

func (s *server) closePanelHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.sess.Do(r.Context(), func(_ context.Context, sess *session.Session) error {
		if !sess.Unpin(id) {
			return errNotFound
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *server) inspectPanelHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.sess.Do(r.Context(), func(ctx context.Context, sess *session.Session) error {
		if !sess.Inspect(ctx, id) {
			return errNotFound
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// feedHandler streams panel content updates, one JSON message each.
func (s *server) feedHandler(w http.ResponseWriter, r *http.Request) {
	updates, cancel := s.sess.Subscribe()
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("feed upgrade", "error", err)
		return
	}
	defer conn.Close()
	s.logger.Debug("feed client connected", "remote", r.RemoteAddr)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(u); err != nil {
				s.logger.Debug("feed write", "error", err)
				return
			}
		}
	}
}

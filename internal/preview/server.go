// internal/preview/server.go
package preview

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server is a small local HTTP server backing the kiosk display: it
// broadcasts live camera frames over a websocket and serves the frozen
// captured frame at a revocable /frame/<handle> URL. It implements
// capture.Publisher; revoking a handle makes its URL 404.
type Server struct {
	server          *http.Server
	port            string
	isRunning       bool
	upgrader        websocket.Upgrader
	wsConnections   map[*websocket.Conn]bool
	wsConnectionsMu sync.RWMutex
	frames          map[string][]byte
	framesMu        sync.RWMutex
	logCallback     func(level, message string) // Callback for forwarding logs
}

func New(port string, logCallback func(level, message string)) *Server {
	return &Server{
		port:        port,
		logCallback: logCallback,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		wsConnections: make(map[*websocket.Conn]bool),
		frames:        make(map[string][]byte),
	}
}

func (s *Server) Start() error {
	if s.isRunning {
		s.addLog("ERROR", fmt.Sprintf("Preview server is already running on port %s", s.port))
		return fmt.Errorf("preview server is already running")
	}

	s.server = &http.Server{
		Addr:    ":" + s.port,
		Handler: s.routes(),
	}

	go func() {
		s.addLog("INFO", fmt.Sprintf("Starting preview server on port %s", s.port))
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.addLog("ERROR", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	s.isRunning = true
	return nil
}

func (s *Server) Stop() error {
	if !s.isRunning {
		return fmt.Errorf("preview server is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.addLog("ERROR", fmt.Sprintf("Server shutdown error: %v", err))
		return fmt.Errorf("server shutdown error: %v", err)
	}

	s.isRunning = false
	s.addLog("INFO", "Preview server stopped")
	return nil
}

func (s *Server) IsRunning() bool {
	return s.isRunning
}

func (s *Server) Port() string {
	return s.port
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/camera", s.handleWebSocketCamera)
	mux.HandleFunc("/frame/", s.handleFrame)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, previewPage)
	})
	return mux
}

// Publish registers a captured frame under a fresh handle and returns it.
func (s *Server) Publish(png []byte) (string, error) {
	if len(png) == 0 {
		return "", fmt.Errorf("refusing to publish empty frame")
	}

	handle := uuid.NewString()
	s.framesMu.Lock()
	s.frames[handle] = png
	s.framesMu.Unlock()
	return handle, nil
}

// Revoke forgets a published frame. Its URL returns 404 afterwards.
func (s *Server) Revoke(handle string) {
	s.framesMu.Lock()
	delete(s.frames, handle)
	s.framesMu.Unlock()
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	handle := r.URL.Path[len("/frame/"):]

	s.framesMu.RLock()
	png, ok := s.frames[handle]
	s.framesMu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (s *Server) handleWebSocketCamera(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.addLog("ERROR", fmt.Sprintf("Error upgrading websocket connection: %v", err))
		return
	}

	s.addLog("INFO", fmt.Sprintf("Websocket connection established from: %s", r.RemoteAddr))

	s.wsConnectionsMu.Lock()
	s.wsConnections[conn] = true
	s.wsConnectionsMu.Unlock()

	defer func() {
		conn.Close()
		s.wsConnectionsMu.Lock()
		delete(s.wsConnections, conn)
		s.wsConnectionsMu.Unlock()
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

// BroadcastFrame pushes a live frame to every connected preview page.
func (s *Server) BroadcastFrame(frameBytes []byte) {
	s.wsConnectionsMu.Lock()
	defer s.wsConnectionsMu.Unlock()
	for conn := range s.wsConnections {
		if err := conn.WriteMessage(websocket.BinaryMessage, frameBytes); err != nil {
			s.addLog("ERROR", fmt.Sprintf("Error writing message to websocket: %v", err))
			conn.Close()
			delete(s.wsConnections, conn)
		}
	}
}

func (s *Server) addLog(level, message string) {
	if s.logCallback != nil {
		s.logCallback(level, message)
	}
}

const previewPage = `<!DOCTYPE html>
<html>
<head><title>Attendance Kiosk Preview</title></head>
<body style="margin:0;background:#111">
<img id="feed" width="400" height="300" style="display:block;margin:40px auto">
<script>
const img = document.getElementById("feed");
const ws = new WebSocket("ws://" + location.host + "/ws/camera");
ws.binaryType = "blob";
ws.onmessage = (ev) => {
  const url = URL.createObjectURL(ev.data);
  img.onload = () => URL.revokeObjectURL(url);
  img.src = url;
};
</script>
</body>
</html>
`

// Package preview serves generated cards over HTTP so they can be
// inspected in a browser before printing.
package preview

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Server serves the card output directory.
type Server struct {
	dir  string
	addr string
	log  *zap.Logger
}

// New creates a preview server for the given output directory.
func New(dir, addr string, log *zap.Logger) *Server {
	return &Server{dir: dir, addr: addr, log: log}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /cards", s.listCards)
	mux.Handle("GET /cards/", http.StripPrefix("/cards/", http.FileServer(http.Dir(s.dir))))
	mux.HandleFunc("GET /health", s.health)

	s.log.Info("preview server listening", zap.String("addr", s.addr), zap.String("dir", s.dir))
	return http.ListenAndServe(s.addr, mux)
}

// CardInfo describes one generated card file.
type CardInfo struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

func (s *Server) listCards(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	cards := []CardInfo{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		cards = append(cards, CardInfo{
			Filename: e.Name(),
			URL:      "/cards/" + filepath.ToSlash(e.Name()),
			Size:     info.Size(),
		})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Filename < cards[j].Filename })

	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

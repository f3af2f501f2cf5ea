package server

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/livetemplate/pinboard"
	"github.com/livetemplate/pinboard/internal/assets"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="/assets/pinboard.css">
</head>
<body>
    <header class="banner">
        <h1 class="banner__title">{{.Title}}</h1>
        <form class="add-form" id="add-form">
            <select name="kind">{{range .Kinds}}<option value="{{.}}">{{.}}</option>{{end}}</select>
            <input name="title" placeholder="Title" required>
            <input name="body" placeholder="URL or text">
            <button type="submit">Add</button>
        </form>
    </header>
    <div id="board">{{.Board}}</div>
    <script src="/assets/pinboard.js"></script>
</body>
</html>
`))

// Handler builds the HTTP handler for the server. ctx bounds the lifetime of
// the rate limiter's cleanup goroutine.
func (s *Server) Handler(ctx context.Context) http.Handler {
	limit, _ := RateLimitMiddleware(ctx,
		s.config.API.GetRateLimitRPS(),
		s.config.API.GetRateLimitBurst(),
		s.config.API.GetRateLimitMaxIPs())

	r := mux.NewRouter()
	r.Use(SecurityHeadersMiddleware())
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/board", s.serveBoard).Methods(http.MethodGet)
	r.HandleFunc("/assets/{name}", s.serveAsset).Methods(http.MethodGet)
	r.Handle("/ws", limit(http.HandlerFunc(s.serveWebSocket)))

	api := r.PathPrefix("/api").Subrouter()
	api.Use(limit)
	api.HandleFunc("/items", s.listItems).Methods(http.MethodGet)
	api.HandleFunc("/items", s.addItem).Methods(http.MethodPost)
	api.HandleFunc("/events", s.postEvent).Methods(http.MethodPost)

	return WithCompression(r)
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	board, err := s.BoardHTML()
	if err != nil {
		log.Printf("[Server] %v", err)
		http.Error(w, "failed to render board", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = shellTemplate.Execute(w, struct {
		Title string
		Kinds []pinboard.Kind
		Board template.HTML
	}{
		Title: s.Title(),
		Kinds: pinboard.Kinds(),
		// Rendered by dom.Render, which escapes all text and attributes.
		Board: template.HTML(board),
	})
	if err != nil {
		log.Printf("[Server] Failed to write page: %v", err)
	}
}

func (s *Server) serveBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.BoardHTML()
	if err != nil {
		log.Printf("[Server] %v", err)
		http.Error(w, "failed to render board", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(board))
}

// serveAsset serves embedded client assets.
func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	data, contentType, err := assets.Get(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Items())
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var spec pinboard.ItemSpec
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&spec); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid item: "+err.Error())
		return
	}
	if err := s.AddItem(r.Context(), spec); err != nil {
		var kindErr *pinboard.UnknownKindError
		var itemErr *InvalidItemError
		if errors.As(err, &kindErr) || errors.As(err, &itemErr) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[Server] Add item failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to add item")
		return
	}
	writeJSON(w, http.StatusCreated, spec)
}

func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	var msg EventMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&msg); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid event: "+err.Error())
		return
	}
	board, err := s.Dispatch(r.Context(), msg)
	switch {
	case errors.Is(err, ErrUnknownTarget):
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, ErrUnknownEvent):
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("[Server] Event failed: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "event failed")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(board))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Failed to encode response: %v", err)
	}
}

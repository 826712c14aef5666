package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/allendavis-developer/cashgensuite/models"
	"github.com/allendavis-developer/cashgensuite/services"
	"github.com/allendavis-developer/cashgensuite/storage"
	"github.com/allendavis-developer/cashgensuite/utils"
)

// listingsMessage is what the browser extension pushes after scraping a
// results page on the user's behalf.
type listingsMessage struct {
	Type     string            `json:"type"` // "listings"
	Item     string            `json:"item"`
	Category string            `json:"category"`
	Attrs    map[string]string `json:"attributes,omitempty"`
	Fresh    bool              `json:"fresh,omitempty"`
	Listings []struct {
		Title    string `json:"title"`
		Price    string `json:"price"`
		SoldText string `json:"soldText"`
		URL      string `json:"url"`
	} `json:"listings"`
}

// analysisReply is sent back to the extension for each listings message.
type analysisReply struct {
	Type      string                `json:"type"` // "analysis" or "error"
	Item      string                `json:"item,omitempty"`
	Error     string                `json:"error,omitempty"`
	Analysis  *models.PriceAnalysis `json:"analysis,omitempty"`
	RepliedAt time.Time             `json:"repliedAt"`
}

// Server accepts websocket connections from the browser extension, runs the
// pricing pipeline over pushed listing batches and replies with the
// analysis. The transport is deliberately dumb: it moves records in and
// results out, nothing more.
type Server struct {
	addr     string
	logger   *utils.Logger
	analyzer *services.Analyzer
	store    storage.AnalysisWriter // nil when persistence is disabled
	upgrader websocket.Upgrader
}

// NewServer creates a bridge Server. store may be nil to skip persistence.
func NewServer(addr string, logger *utils.Logger, analyzer *services.Analyzer, store storage.AnalysisWriter) *Server {
	return &Server{
		addr:     addr,
		logger:   logger,
		analyzer: analyzer,
		store:    store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1 << 16,
			WriteBufferSize: 1 << 16,
			// The extension connects from an arbitrary page origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ListenAndServe blocks serving the bridge endpoint at /bridge.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/bridge", s.handleBridge)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.logger.Info("[bridge] Listening on ws://%s/bridge", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *Server) handleBridge(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("[bridge] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s.logger.Info("[bridge] Extension connected from %s", r.RemoteAddr)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("[bridge] Connection dropped: %v", err)
			}
			return
		}

		reply := s.handleMessage(payload)
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Error("[bridge] Write failed: %v", err)
			return
		}
	}
}

// handleMessage processes one extension message. Malformed input produces an
// error reply, never a dropped connection.
func (s *Server) handleMessage(payload []byte) analysisReply {
	var msg listingsMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		s.logger.Warn("[bridge] Malformed message: %v", err)
		return errorReply("", fmt.Sprintf("malformed message: %v", err))
	}

	if msg.Type != "listings" {
		return errorReply(msg.Item, fmt.Sprintf("unsupported message type %q", msg.Type))
	}
	if msg.Item == "" {
		return errorReply("", "missing item name")
	}

	raw := make([]*models.RawListing, 0, len(msg.Listings))
	for _, l := range msg.Listings {
		raw = append(raw, &models.RawListing{
			Source:    "extension",
			Title:     l.Title,
			RawPrice:  l.Price,
			SoldText:  l.SoldText,
			URL:       l.URL,
			ScrapedAt: time.Now(),
		})
	}

	analysis := s.analyzer.Analyze(services.AnalyzeRequest{
		ItemName:   msg.Item,
		Category:   msg.Category,
		Attributes: msg.Attrs,
		Raw:        raw,
	}, msg.Fresh)

	if s.store != nil {
		if err := s.store.WriteAnalysis(analysis); err != nil {
			s.logger.Error("[bridge] Persist analysis for %q failed: %v", msg.Item, err)
		}
	}

	return analysisReply{
		Type:      "analysis",
		Item:      msg.Item,
		Analysis:  analysis,
		RepliedAt: time.Now(),
	}
}

func errorReply(item, msg string) analysisReply {
	return analysisReply{Type: "error", Item: item, Error: msg, RepliedAt: time.Now()}
}

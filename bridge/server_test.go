package bridge

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/allendavis-developer/cashgensuite/services"
	"github.com/allendavis-developer/cashgensuite/utils"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := utils.NewLogger(false)
	analyzer, err := services.NewAnalyzer(logger, services.NewMarginBook(), time.Minute)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	return NewServer("127.0.0.1:0", logger, analyzer, nil)
}

func TestHandleMessageRunsPipeline(t *testing.T) {
	s := newTestServer(t)

	payload, _ := json.Marshal(map[string]any{
		"type": "listings",
		"item": "iPhone 12",
		"listings": []map[string]string{
			{"title": "iPhone 12", "price": "£100", "soldText": "Sold 10 Aug 2025", "url": "https://ebay.co.uk/itm/1"},
			{"title": "iPhone 12", "price": "£120", "soldText": "Sold 12 Aug 2025", "url": "https://ebay.co.uk/itm/2"},
		},
	})

	reply := s.handleMessage(payload)
	if reply.Type != "analysis" {
		t.Fatalf("reply type: got %q, want \"analysis\" (error: %s)", reply.Type, reply.Error)
	}
	if reply.Analysis == nil {
		t.Fatal("expected an analysis in the reply")
	}
	if reply.Analysis.CleanedListings != 2 {
		t.Errorf("CleanedListings: got %d, want 2", reply.Analysis.CleanedListings)
	}
	if !reply.Analysis.HasEstimate {
		t.Error("expected an estimate from two dated sales")
	}
}

func TestHandleMessageRejectsMalformedInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", `{"type": "listings",`},
		{"wrong type", `{"type": "ping"}`},
		{"missing item", `{"type": "listings", "listings": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := s.handleMessage([]byte(tt.payload))
			if reply.Type != "error" {
				t.Errorf("reply type: got %q, want \"error\"", reply.Type)
			}
			if reply.Error == "" {
				t.Error("expected a populated error message")
			}
		})
	}
}

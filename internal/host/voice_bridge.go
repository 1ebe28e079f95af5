package host

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// VoiceBridgeHost is a Capability whose say()/listen() pair is backed by a
// websocket hub instead of a real TTS/STT vendor: say() transcripts are
// broadcast to every connected client, and listen() reads the next queued
// string a client pushed back. It is a transport, not a voice backend
// (spec.md §11).
type VoiceBridgeHost struct {
	*DefaultHost

	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]string // conn -> connection id, for logging only
	inbound chan string
}

// sayMessage is the wire shape broadcast to connected clients.
type sayMessage struct {
	Text    string  `json:"text"`
	Emotion *string `json:"emotion,omitempty"`
	VoiceID *string `json:"voice_id,omitempty"`
	Speed   *float64 `json:"speed,omitempty"`
}

// NewVoiceBridgeHost constructs a VoiceBridgeHost with no connected clients.
func NewVoiceBridgeHost() *VoiceBridgeHost {
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	return &VoiceBridgeHost{
		DefaultHost: NewDefaultHost(),
		upgrader:    websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		logger:      logger,
		clients:     make(map[*websocket.Conn]string),
		inbound:     make(chan string, 16),
	}
}

// ServeWS upgrades an HTTP connection to a websocket and registers it as a
// voice-bridge client: messages it sends become listen() fixtures, and it
// receives every say() broadcast.
func (h *VoiceBridgeHost) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.clients[conn] = id
	h.mu.Unlock()
	h.logger.Info("voice bridge client connected", zap.String("client_id", id))

	go h.readLoop(conn, id)
	return nil
}

func (h *VoiceBridgeHost) readLoop(conn *websocket.Conn, id string) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
		h.logger.Info("voice bridge client disconnected", zap.String("client_id", id))
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case h.inbound <- string(msg):
		default:
		}
	}
}

// Say broadcasts the transcript to every connected client and falls back to
// the in-memory sink transcription when no client is connected.
func (h *VoiceBridgeHost) Say(text string, emotion, voiceID *string, speed *float64) error {
	h.mu.Lock()
	n := len(h.clients)
	clients := make([]*websocket.Conn, 0, n)
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	if n == 0 {
		return h.DefaultHost.Say(text, emotion, voiceID, speed)
	}

	payload, err := json.Marshal(sayMessage{Text: text, Emotion: emotion, VoiceID: voiceID, Speed: speed})
	if err != nil {
		return err
	}
	for _, c := range clients {
		_ = c.WriteMessage(websocket.TextMessage, payload)
	}
	return nil
}

// Listen reads the next string a connected client pushed. With a timeout it
// returns nil once the timeout elapses; with no timeout it blocks until a
// message arrives. It does not observe the execution's cancel flag.
func (h *VoiceBridgeHost) Listen(timeout *float64, language *string) (*string, error) {
	var after <-chan time.Time
	if timeout != nil {
		after = time.After(time.Duration(*timeout * float64(time.Second)))
	}

	select {
	case msg := <-h.inbound:
		return &msg, nil
	case <-after:
		return nil, nil
	}
}

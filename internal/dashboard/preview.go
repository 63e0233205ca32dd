package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// The default origin check rejects cross-site pages; the socket rides on
// the session cookie.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// previewMessage is the outgoing WebSocket message format.
type previewMessage struct {
	Type string `json:"type"` // "preview" or "error"
	Seq  int    `json:"seq"`
	HTML string `json:"html,omitempty"`
	Err  string `json:"error,omitempty"`
}

// previewInput is the incoming WebSocket message format. Seq lets the
// editor drop stale renders.
type previewInput struct {
	Seq     int    `json:"seq"`
	Content string `json:"content"`
}

// handlePreviewSocket renders every message it receives, one at a time,
// until the editor closes the socket.
func (d *Dashboard) handlePreviewSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				d.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var in previewInput
		if err := json.Unmarshal(msg, &in); err != nil {
			d.send(conn, previewMessage{Type: "error", Err: "invalid message format"})
			continue
		}

		html, err := d.markdown.Render(in.Content)
		if err != nil {
			d.send(conn, previewMessage{Type: "error", Seq: in.Seq, Err: err.Error()})
			continue
		}
		d.send(conn, previewMessage{Type: "preview", Seq: in.Seq, HTML: string(html)})
	}
}

func (d *Dashboard) send(conn *websocket.Conn, msg previewMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		d.logger.Warn("websocket write", zap.Error(err))
	}
}

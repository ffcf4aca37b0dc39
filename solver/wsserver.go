package solver

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// ListenPath is the URI on which a solver worker listens for computations.
const ListenPath = "/ws"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1 << 16,
	WriteBufferSize: 1 << 16,
}

// Handler returns an http.Handler that answers solver protocol frames over a
// websocket connection. Each binary message is one request; the reply is the
// matching response frame.
func Handler(s Solver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnf("solver: upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		serveConn(conn, s)
	})
}

// ListenAndServe runs a solver worker on the given address until the listener
// fails.
func ListenAndServe(address string, s Solver) error {
	mux := http.NewServeMux()
	mux.Handle(ListenPath, Handler(s))
	log.Infof("solver: listening on %s%s", address, ListenPath)
	return http.ListenAndServe(address, mux)
}

func serveConn(conn *websocket.Conn, s Solver) {
	for {
		messageType, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return
			}
			log.Warnf("solver: read: %v", err)
			return
		}
		if messageType != websocket.BinaryMessage {
			log.Warn("solver: dropping non-binary message")
			continue
		}

		req, err := DecodeRequest(frame)
		var res *Response
		if err != nil {
			log.Warnf("solver: bad request frame: %v", err)
			res = &Response{Status: StatusError}
		} else if res, err = s.Solve(context.Background(), req); err != nil {
			log.Warnf("solver: solve: %v", err)
			res = &Response{Status: StatusError}
		}

		out, err := EncodeResponse(res)
		if err != nil {
			log.Errorf("solver: encode response: %v", err)
			return
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, out); err != nil {
			log.Warnf("solver: write: %v", err)
			return
		}
	}
}

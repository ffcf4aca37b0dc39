package solver

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// dialRetryInterval is the pause between connection attempts.
const dialRetryInterval = time.Second

// RemoteSolver forwards computations to a worker process over a websocket
// connection. Requests are serialized on the single connection, one in
// flight at a time.
type RemoteSolver struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Dial connects to a solver worker at host:port, retrying until the context
// is cancelled.
func Dial(ctx context.Context, address string) (*RemoteSolver, error) {
	u := url.URL{Scheme: "ws", Host: address, Path: ListenPath}
	for {
		log.Infof("solver: connecting to %s", u.String())
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
		if err == nil {
			return &RemoteSolver{conn: conn}, nil
		}
		log.Warnf("solver: dial: %v", err)
		select {
		case <-time.After(dialRetryInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Solve implements Solver.
func (s *RemoteSolver) Solve(ctx context.Context, req *Request) (*Response, error) {
	frame, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, ErrClosed
	}
	if deadline, ok := ctx.Deadline(); ok {
		s.conn.SetReadDeadline(deadline)
		s.conn.SetWriteDeadline(deadline)
	} else {
		s.conn.SetReadDeadline(time.Time{})
		s.conn.SetWriteDeadline(time.Time{})
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return nil, fmt.Errorf("solver: write: %w", err)
	}
	messageType, reply, err := s.conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("solver: read: %w", err)
	}
	if messageType != websocket.BinaryMessage {
		return nil, fmt.Errorf("solver: unexpected message type %d", messageType)
	}
	return DecodeResponse(reply)
}

// Close closes the worker connection.
func (s *RemoteSolver) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	s.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	err := s.conn.Close()
	s.conn = nil
	return err
}

package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline     = 5 * time.Second
	messageBufferSize = 16
)

var (
	// ErrSendQueueFull reports a client that cannot keep up with delivery.
	ErrSendQueueFull = errors.New("send queue full")
	// ErrWriterClosed reports delivery to a connection whose writer has exited.
	ErrWriterClosed = errors.New("writer closed")
)

// Sink is the delivery handle for one connection: it accepts a single
// structured message for asynchronous delivery. Send never blocks; the
// error reports delivery failure so the caller can treat the session as
// disconnected.
type Sink interface {
	Send(n Notification) error
	Close()
}

// clientWriter serializes all writes to one WebSocket connection through a
// single goroutine, preserving per-session delivery order. A write error or
// deadline kills the writer; subsequent Sends fail and the session gets
// pruned on the next delivery attempt.
type clientWriter struct {
	connection  *websocket.Conn
	clock       clockwork.Clock
	sendChannel chan []byte
	doneChannel chan struct{}
	deadChannel chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

func newClientWriter(connection *websocket.Conn, clock clockwork.Clock) *clientWriter {
	cw := &clientWriter{
		connection:  connection,
		clock:       clock,
		sendChannel: make(chan []byte, messageBufferSize),
		doneChannel: make(chan struct{}),
		deadChannel: make(chan struct{}),
	}
	cw.wg.Add(1)
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	defer cw.wg.Done()
	defer close(cw.deadChannel)

	for {
		select {
		case msg := <-cw.sendChannel:
			deadline := cw.clock.Now().Add(writeDeadline)
			_ = cw.connection.SetWriteDeadline(deadline)
			if err := cw.connection.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.doneChannel:
			return
		}
	}
}

// Send enqueues a notification for delivery. Fails immediately if the writer
// has exited or the queue is full (slow client).
func (cw *clientWriter) Send(n Notification) error {
	select {
	case <-cw.deadChannel:
		return ErrWriterClosed
	default:
	}

	select {
	case cw.sendChannel <- n.Data():
		return nil
	case <-cw.deadChannel:
		return ErrWriterClosed
	default:
		return ErrSendQueueFull
	}
}

// Close stops the writer and closes the underlying connection. Idempotent.
func (cw *clientWriter) Close() {
	cw.stopOnce.Do(func() {
		close(cw.doneChannel)
		_ = cw.connection.Close()
	})
	cw.wg.Wait()
}

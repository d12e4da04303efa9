// Package harness drives the firewall from a newline-delimited JSON stream,
// one command per line and one reply per command.
//
//	{"id":"1","op":"simulate","kind":"SMS","number":"10690000","content":"中奖啦"}
//	{"id":"1","ok":true,"outcome":{"kind":"BLOCKED","reason":"垃圾短信关键字: 中奖","ruleId":"4"},"log":{...}}
package harness

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/haukened/guardia/internal/guard/common/log"
)

// maxLineSize bounds a single command line.
const maxLineSize = 1 << 20

// StreamTransport reads commands from r and writes replies to w.
type StreamTransport struct {
	r      io.Reader
	w      io.Writer
	codec  Codec
	logger log.Logger

	mu      sync.Mutex
	running bool
}

func NewStreamTransport(r io.Reader, w io.Writer, codec Codec, logger log.Logger) *StreamTransport {
	return &StreamTransport{r: r, w: w, codec: codec, logger: logger}
}

type readResult struct {
	line []byte
	err  error
}

// Serve handles commands until the reader is exhausted or ctx is cancelled.
// Malformed lines get an error reply and do not stop the loop. It returns nil
// on EOF and ctx.Err() on cancellation.
//
// On cancellation a reader that implements io.Closer is closed to release the
// scanning goroutine. Any other reader leaves that goroutine blocked in Read
// until its next line or EOF.
func (t *StreamTransport) Serve(ctx context.Context, handler Handler) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("harness transport already running")
	}
	t.running = true
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
	}()

	lines := make(chan readResult)
	done := make(chan struct{})
	defer close(done)
	go t.readLoop(lines, done)

	t.logger.Info(map[string]any{"transport": "stream"}, "harness started")

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug(nil, "harness stopping due to context cancellation")
			if c, ok := t.r.(io.Closer); ok {
				if err := c.Close(); err != nil {
					t.logger.Warn(map[string]any{"error": err.Error()}, "Error closing harness input")
				}
			}
			return ctx.Err()
		case res, ok := <-lines:
			if !ok {
				t.logger.Info(nil, "harness input closed")
				return nil
			}
			if res.err != nil {
				return fmt.Errorf("failed to read command: %w", res.err)
			}
			if err := t.handleLine(ctx, res.line, handler); err != nil {
				return err
			}
		}
	}
}

// readLoop scans lines until EOF, then closes out.
func (t *StreamTransport) readLoop(out chan<- readResult, done <-chan struct{}) {
	defer close(out)
	sc := bufio.NewScanner(t.r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := append([]byte(nil), sc.Bytes()...)
		select {
		case out <- readResult{line: line}:
		case <-done:
			return
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		select {
		case out <- readResult{err: err}:
		case <-done:
		}
	}
}

// handleLine decodes, dispatches and answers one line. Only write failures
// are returned.
func (t *StreamTransport) handleLine(ctx context.Context, line []byte, handler Handler) error {
	cmd, err := t.codec.DecodeCommand(line)
	var reply Reply
	switch {
	case errors.Is(err, ErrEmptyCommand):
		return nil
	case err != nil:
		t.logger.Warn(map[string]any{"error": err.Error(), "size": len(line)}, "Failed to decode command")
		reply = Reply{ID: cmd.ID, Error: err.Error()}
	default:
		t.logger.Debug(map[string]any{"id": cmd.ID, "op": cmd.Op}, "Received command")
		reply = handler.Handle(ctx, cmd)
	}

	data, err := t.codec.EncodeReply(reply)
	if err != nil {
		t.logger.Error(map[string]any{"id": reply.ID, "error": err.Error()}, "Failed to encode reply")
		return nil
	}
	if _, err := t.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write reply: %w", err)
	}
	return nil
}

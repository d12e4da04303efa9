package harness

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/guardia/internal/guard/common/log"
)

// echoHandler replies OK with the command's op as status.
type echoHandler struct{}

func (echoHandler) Handle(_ context.Context, cmd Command) Reply {
	return Reply{ID: cmd.ID, OK: true, Status: cmd.Op}
}

func decodeReplies(t *testing.T, out []byte) []Reply {
	t.Helper()
	var replies []Reply
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		var r Reply
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		replies = append(replies, r)
	}
	return replies
}

func TestStreamTransport_OneReplyPerCommand(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		`{"id":"1","op":"snapshot"}`,
		``,
		`not json`,
		`{"id":"3"}`,
		`{"id":"4","op":"stats"}`,
	}, "\n"))
	var out bytes.Buffer
	tr := NewStreamTransport(in, &out, NewJSONCodec(), log.NewNoopLogger())

	require.NoError(t, tr.Serve(context.Background(), echoHandler{}))

	replies := decodeReplies(t, out.Bytes())
	require.Len(t, replies, 4, "blank lines are skipped, malformed ones answered")
	assert.True(t, replies[0].OK)
	assert.Equal(t, "snapshot", replies[0].Status)
	assert.False(t, replies[1].OK)
	assert.NotEmpty(t, replies[1].Error)
	assert.False(t, replies[2].OK)
	assert.Equal(t, "3", replies[2].ID)
	assert.True(t, replies[3].OK)
	assert.Equal(t, "4", replies[3].ID)
}

func TestStreamTransport_EndToEnd(t *testing.T) {
	in := strings.NewReader(`{"id":"s","op":"simulate","kind":"CALL","number":"400 123 4567"}` + "\n")
	var out bytes.Buffer
	tr := NewStreamTransport(in, &out, NewJSONCodec(), log.NewNoopLogger())

	require.NoError(t, tr.Serve(context.Background(), NewDispatcher(newTestService(t))))

	replies := decodeReplies(t, out.Bytes())
	require.Len(t, replies, 1)
	assert.Equal(t, "BLOCKED", replies[0].Outcome.Kind)
	assert.Equal(t, "400 123 4567", replies[0].Log.Number)
}

func TestStreamTransport_StopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	tr := NewStreamTransport(pr, &out, NewJSONCodec(), log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- tr.Serve(ctx, echoHandler{}) }()

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	// the input was closed, so the scanning goroutine is no longer reading
	_, err := pw.Write([]byte("{\"op\":\"stats\"}\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestStreamTransport_RejectsConcurrentServe(t *testing.T) {
	pr, pw := io.Pipe()
	tr := NewStreamTransport(pr, io.Discard, NewJSONCodec(), log.NewNoopLogger())

	errCh := make(chan error, 1)
	go func() { errCh <- tr.Serve(context.Background(), echoHandler{}) }()

	require.Eventually(t, func() bool {
		tr.mu.Lock()
		defer tr.mu.Unlock()
		return tr.running
	}, time.Second, 5*time.Millisecond)
	assert.Error(t, tr.Serve(context.Background(), echoHandler{}))

	pw.Close()
	assert.NoError(t, <-errCh)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestStreamTransport_WriteErrorStops(t *testing.T) {
	in := strings.NewReader("{\"op\":\"a\"}\n{\"op\":\"b\"}\n")
	tr := NewStreamTransport(in, failingWriter{}, NewJSONCodec(), log.NewNoopLogger())
	err := tr.Serve(context.Background(), echoHandler{})
	assert.ErrorContains(t, err, "broken pipe")
}

func TestStreamTransport_ReadErrorStops(t *testing.T) {
	pr, pw := io.Pipe()
	pw.CloseWithError(errors.New("device gone"))
	tr := NewStreamTransport(pr, io.Discard, NewJSONCodec(), log.NewNoopLogger())
	err := tr.Serve(context.Background(), echoHandler{})
	assert.ErrorContains(t, err, "device gone")
}

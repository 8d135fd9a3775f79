package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guidoenr/ledtree/internal/engine"
	"github.com/pkg/errors"
)

func sampleRecord() Record {
	return Record{Raw: 550, Amplitude: 114, Ceiling: 120, ZeroPoint: 512, Height: 285, Peak: 299, Switch: true, Mode: "visualizer"}
}

func TestAppendLine(t *testing.T) {
	rec := sampleRecord()
	if got := string(rec.AppendLine(nil, false)); got != "550,114,120,512,285,299,1\n" {
		t.Fatalf("full line=%q", got)
	}
	if got := string(rec.AppendLine(nil, true)); got != "550,114,120,512,285,299\n" {
		t.Fatalf("reduced line=%q", got)
	}
	rec.Switch = false
	if got := string(rec.AppendLine(nil, false)); !strings.HasSuffix(got, ",0\n") {
		t.Fatalf("switch off line=%q", got)
	}
}

func TestParseLineRoundTrip(t *testing.T) {
	rec := sampleRecord()
	got, err := ParseLine(string(rec.AppendLine(nil, false)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec.Mode = ""
	if got != rec {
		t.Fatalf("got %+v want %+v", got, rec)
	}
	if _, err := ParseLine("1,2,3"); err == nil {
		t.Fatalf("short line accepted")
	}
	if _, err := ParseLine("1,2,3,4,5,x"); err == nil {
		t.Fatalf("non-numeric field accepted")
	}
}

func TestFromSnapshot(t *testing.T) {
	rec := FromSnapshot(engine.Snapshot{Raw: 3, Height: 7, Peak: 7, Mode: engine.ModeIdle, Pattern: "fire"})
	if rec.Raw != 3 || rec.Height != 7 || rec.Mode != "idle" || rec.Pattern != "fire" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("unplugged")
}

type recordingListener struct{ recs []Record }

func (l *recordingListener) Publish(_ []byte, rec Record) { l.recs = append(l.recs, rec) }

func TestEmitterFansOutAndLogsErrorsOnce(t *testing.T) {
	var out, logs bytes.Buffer
	bad := &failingWriter{}
	listener := &recordingListener{}
	e := NewEmitter(EmitterConfig{
		Writers:   []io.Writer{&out, bad},
		Listeners: []Listener{listener},
		Log:       log.New(&logs, "", 0),
	})
	for i := 0; i < 3; i++ {
		e.Emit(sampleRecord())
	}
	if got := strings.Count(out.String(), "\n"); got != 3 {
		t.Fatalf("lines=%d want=3", got)
	}
	if bad.calls != 3 {
		t.Fatalf("failing writer called %d times", bad.calls)
	}
	if got := strings.Count(logs.String(), "unplugged"); got != 1 {
		t.Fatalf("error logged %d times want=1", got)
	}
	if len(listener.recs) != 3 {
		t.Fatalf("listener got %d records", len(listener.recs))
	}
}

func TestHubStatusEndpoint(t *testing.T) {
	h := NewHub(HubConfig{Patterns: []string{"rainbow"}})
	h.Publish(nil, sampleRecord())

	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Frames != 1 || st.Height != 285 || st.Mode != "visualizer" || len(st.Patterns) != 1 {
		t.Fatalf("unexpected status %+v", st)
	}

	page, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get index: %v", err)
	}
	page.Body.Close()
	if page.StatusCode != http.StatusOK {
		t.Fatalf("index status=%d", page.StatusCode)
	}
}

func TestHubBroadcastsOverWebSocket(t *testing.T) {
	h := NewHub(HubConfig{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.serve(ctx, ln) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	if err != nil {
		cancel()
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for h.clientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	h.Publish(nil, sampleRecord())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var st Status
	if err := json.Unmarshal(msg, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Raw != 550 || st.Frames != 1 {
		t.Fatalf("unexpected push %+v", st)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("serve: %v", err)
	}
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func TestFollowParsesDeviceOutput(t *testing.T) {
	input := "12,0,120\n" + // partial line after opening the port
		"550,114,114,512,300,299,1\n" +
		"\n" +
		"512,0,114,512,281,299\n"
	var out, logs bytes.Buffer
	listener := &recordingListener{}
	n, err := Follow(strings.NewReader(input), log.New(&logs, "", 0), listener, WriterListener{W: &out})
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if n != 2 || len(listener.recs) != 2 {
		t.Fatalf("records=%d listener=%d want 2", n, len(listener.recs))
	}
	if !listener.recs[0].Switch || listener.recs[1].Height != 281 {
		t.Fatalf("unexpected records %+v", listener.recs)
	}
	if out.String() != "550,114,114,512,300,299,1\n512,0,114,512,281,299\n" {
		t.Fatalf("echo=%q", out.String())
	}
	if !strings.Contains(logs.String(), "12,0,120") {
		t.Fatalf("partial line not reported: %q", logs.String())
	}
}

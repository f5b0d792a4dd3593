package rcon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"
)

const testPassword = "s3cret pass"

// fakeServer is a WebRcon listener that records commands and lets the
// test push frames to the connected client.
type fakeServer struct {
	t        *testing.T
	srv      *httptest.Server
	received chan Message
	conns    chan *websocket.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		t:        t,
		received: make(chan Message, 16),
		conns:    make(chan *websocket.Conn, 1),
	}
	upgrader := websocket.Upgrader{}
	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+testPassword {
			http.Error(w, "bad password", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		fs.conns <- conn
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msg, err := Decode(data)
			if err != nil {
				continue
			}
			fs.received <- msg
		}
	}))
	return fs
}

func (fs *fakeServer) endpoint(password string) Endpoint {
	host, port, err := net.SplitHostPort(fs.srv.Listener.Addr().String())
	if err != nil {
		fs.t.Fatalf("split addr: %v", err)
	}
	p, err := strconv.Atoi(port)
	if err != nil {
		fs.t.Fatalf("port: %v", err)
	}
	return Endpoint{Host: host, Port: p, Password: password}
}

func (fs *fakeServer) conn() *websocket.Conn {
	fs.t.Helper()
	select {
	case c := <-fs.conns:
		return c
	case <-time.After(5 * time.Second):
		fs.t.Fatal("client never connected")
		return nil
	}
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		ep   Endpoint
		want string
	}{
		{Endpoint{Host: "127.0.0.1", Port: 28016, Password: "pw"}, "ws://127.0.0.1:28016/pw"},
		{Endpoint{Host: "localhost", Port: 1, Password: "a b/c"}, "ws://localhost:1/a%20b%2Fc"},
		{Endpoint{Host: "::1", Port: 28016, Password: "x"}, "ws://[::1]:28016/x"},
	}
	for _, tt := range tests {
		if got := tt.ep.URL(); got != tt.want {
			t.Errorf("URL() = %q, want %q", got, tt.want)
		}
	}
	red := Endpoint{Host: "h", Port: 2, Password: "topsecret"}.Redacted()
	if red != "ws://h:2/***" {
		t.Errorf("Redacted() = %q", red)
	}
}

func TestCommandEncoding(t *testing.T) {
	data, err := Encode(Command("oxide.reload Tebex"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"Identifier":-1,"Message":"oxide.reload Tebex","Name":"WebRcon"}`
	if string(data) != want {
		t.Fatalf("Encode = %s, want %s", data, want)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(Command("oxide.reload Tebex"), back); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, in := range []string{"not json", "[1,2]", `{"Identifier":"x"}`} {
		if _, err := Decode([]byte(in)); !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("Decode(%q) err = %v, want ErrMalformedMessage", in, err)
		}
	}
	m, err := Decode([]byte(`{"Message":"hi","Identifier":0,"Type":"Generic","Stacktrace":""}`))
	if err != nil {
		t.Fatalf("Decode with extra fields: %v", err)
	}
	if m.Message != "hi" || m.Name != "" {
		t.Fatalf("Decode = %+v", m)
	}
}

func TestSessionSend(t *testing.T) {
	defer goleak.VerifyNone(t)
	fs := newFakeServer(t)
	defer fs.srv.Close()

	s, err := Dial(context.Background(), fs.endpoint(testPassword), Options{})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer s.Close()
	fs.conn()

	commands := []string{"oxide.plugins", "oxide.reload Tebex"}
	var wg sync.WaitGroup
	for _, c := range commands {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Send(c); err != nil {
				t.Errorf("Send(%q): %v", c, err)
			}
		}()
	}
	wg.Wait()

	got := map[string]Message{}
	for range commands {
		select {
		case m := <-fs.received:
			got[m.Message] = m
		case <-time.After(5 * time.Second):
			t.Fatal("server did not receive command")
		}
	}
	for _, c := range commands {
		if diff := cmp.Diff(Command(c), got[c]); diff != "" {
			t.Errorf("command %q (-want +got):\n%s", c, diff)
		}
	}
}

func TestSessionRunDeliversInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	fs := newFakeServer(t)
	defer fs.srv.Close()

	s, err := Dial(context.Background(), fs.endpoint(testPassword), Options{PollInterval: 10 * time.Millisecond})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	server := fs.conn()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []string
	)
	want := []string{"first", "second", "third"}
	handler := HandlerFunc(func(m Message) {
		mu.Lock()
		got = append(got, m.Message)
		n := len(got)
		mu.Unlock()
		if n == len(want) {
			cancel()
		}
	})

	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx, handler) }()

	frames := []string{
		`{"Identifier":0,"Message":"first","Name":""}`,
		"",
		"   ",
		`{"Identifier":0,"Message":"second","Name":""}`,
		`{"Identifier":-1,"Message":"third","Name":"WebRcon"}`,
	}
	for _, f := range frames {
		time.Sleep(15 * time.Millisecond) // let at least one poll expire
		if err := server.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
			t.Fatalf("server write: %v", err)
		}
	}

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("messages (-want +got):\n%s", diff)
	}
}

func TestSessionRunMalformedIsFatal(t *testing.T) {
	defer goleak.VerifyNone(t)
	fs := newFakeServer(t)
	defer fs.srv.Close()

	s, err := Dial(context.Background(), fs.endpoint(testPassword), Options{})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	server := fs.conn()
	if err := server.WriteMessage(websocket.TextMessage, []byte("{{nope")); err != nil {
		t.Fatalf("server write: %v", err)
	}

	err = s.Run(context.Background(), HandlerFunc(func(Message) {
		t.Error("handler called for malformed frame")
	}))
	if !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("Run err = %v, want ErrMalformedMessage", err)
	}
}

func TestSessionRunServerClose(t *testing.T) {
	defer goleak.VerifyNone(t)
	fs := newFakeServer(t)
	defer fs.srv.Close()

	s, err := Dial(context.Background(), fs.endpoint(testPassword), Options{})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	server := fs.conn()
	_ = server.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	err = s.Run(context.Background(), HandlerFunc(func(Message) {}))
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("Run err = %v, want ErrConnectionLost", err)
	}
}

func TestDialWrongPassword(t *testing.T) {
	defer goleak.VerifyNone(t)
	fs := newFakeServer(t)
	defer fs.srv.Close()

	_, err := Dial(context.Background(), fs.endpoint("wrong"), Options{})
	if !errors.Is(err, ErrConnectionFailure) {
		t.Fatalf("Dial err = %v, want ErrConnectionFailure", err)
	}
}

func TestDialUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = Dial(ctx, Endpoint{Host: "127.0.0.1", Port: port, Password: "x"}, Options{})
	if !errors.Is(err, ErrConnectionFailure) {
		t.Fatalf("Dial err = %v, want ErrConnectionFailure", err)
	}
}

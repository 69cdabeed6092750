package control

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/nathants/inspector/lib/geom"
	"github.com/nathants/inspector/lib/page"
	"github.com/nathants/inspector/lib/page/pagetest"
	"github.com/nathants/inspector/lib/session"
)

func startServer(t *testing.T) (*httptest.Server, *pagetest.Page) {
	t.Helper()
	p := pagetest.New()
	p.Add("a", &pagetest.Element{Tag: "DIV", ID: "hero", Rect: geom.Rect{X: 10, Y: 10, Width: 100, Height: 40}})
	p.Add("b", &pagetest.Element{Tag: "P", Rect: geom.Rect{X: 10, Y: 400, Width: 100, Height: 40}})
	sess := session.New(p, session.Config{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sess.Run(ctx)
	}()

	srv := httptest.NewServer(NewHandler(sess, log.New(io.Discard)))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return srv, p
}

func post(t *testing.T, srv *httptest.Server, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, body
}

func getJSON(t *testing.T, srv *httptest.Server, path string, v any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func waitPanels(t *testing.T, srv *httptest.Server, n int) []session.PanelInfo {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		var panels []session.PanelInfo
		getJSON(t, srv, "/panels", &panels)
		if len(panels) == n {
			return panels
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d panels, want %d", len(panels), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSignals(t *testing.T) {
	srv, _ := startServer(t)

	var st session.Status
	getJSON(t, srv, "/state", &st)
	if st.Active {
		t.Fatal("session should start inactive")
	}

	status, body := post(t, srv, "/picker")
	if status != http.StatusConflict || body["error"] == nil {
		t.Fatalf("picker while inactive: %d %v", status, body)
	}

	status, body = post(t, srv, "/activate")
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("activate: %d %v", status, body)
	}
	getJSON(t, srv, "/state", &st)
	if !st.Active || !st.Picker {
		t.Fatalf("after activate: %+v", st)
	}

	// activating an active session is acknowledged and changes nothing
	if status, _ := post(t, srv, "/activate"); status != http.StatusOK {
		t.Fatalf("second activate: %d", status)
	}

	post(t, srv, "/picker")
	getJSON(t, srv, "/state", &st)
	if !st.Active || st.Picker {
		t.Fatalf("after picker toggle: %+v", st)
	}

	post(t, srv, "/toggle")
	getJSON(t, srv, "/state", &st)
	if st.Active {
		t.Fatalf("after toggle: %+v", st)
	}
	post(t, srv, "/toggle")
	getJSON(t, srv, "/state", &st)
	if !st.Active || !st.Picker {
		t.Fatalf("after second toggle: %+v", st)
	}

	post(t, srv, "/deactivate")
	getJSON(t, srv, "/state", &st)
	if st.Active {
		t.Fatalf("after deactivate: %+v", st)
	}
}

func TestPanels(t *testing.T) {
	srv, p := startServer(t)
	post(t, srv, "/activate")

	p.Send(page.Event{Kind: page.EventClick, Handle: "a"})
	p.Send(page.Event{Kind: page.EventClick, Handle: "b"})
	panels := waitPanels(t, srv, 2)
	if panels[0].Selector != "#hero" || panels[1].Selector != "p" {
		t.Fatalf("panels %+v", panels)
	}

	resp, err := http.Post(srv.URL+"/panels/"+panels[0].ID+"/inspect", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("inspect: %s", resp.Status)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/panels/"+panels[0].ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("close: %s", resp.Status)
	}
	waitPanels(t, srv, 1)

	req, _ = http.NewRequest(http.MethodDelete, srv.URL+"/panels/nope", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("close unknown: %s", resp.Status)
	}

	post(t, srv, "/clear")
	waitPanels(t, srv, 0)
}

func TestFeed(t *testing.T) {
	srv, p := startServer(t)
	post(t, srv, "/activate")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	p.Send(page.Event{Kind: page.EventClick, Handle: "a"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var u session.Update
	if err := conn.ReadJSON(&u); err != nil {
		t.Fatal(err)
	}
	if u.Selector != "#hero" || u.Panel == "" {
		t.Fatalf("update %+v", u)
	}
	if _, ok := u.Key.Get("size"); !ok {
		t.Fatalf("update without key styles: %+v", u)
	}
}

package ws

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/overlay"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/render"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/settings"
	"github.com/GriffinCanCode/HTMLReader/internal/providers/source"
)

type counter struct {
	mu      sync.Mutex
	actions []string
}

func (c *counter) IncWSConnections()              {}
func (c *counter) DecWSConnections()              {}
func (c *counter) RecordWSMessage(string, string) {}

func (c *counter) RecordOverlayAction(a string) {
	c.mu.Lock()
	c.actions = append(c.actions, a)
	c.mu.Unlock()
}

func (c *counter) seen() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.actions...)
}

func setup(t *testing.T) (*render.Manager, *httptest.Server, *counter) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.html"), []byte(`<p>one two one</p>`), 0o644))
	files, err := source.NewFileLoader(root, 0)
	require.NoError(t, err)

	views := render.NewManager(render.NewRenderer(nil, nil, 0), files,
		settings.NewMemoryStore(settings.Defaults()), render.ManagerOptions{}, nil)
	rec := &counter{}

	r := gin.New()
	r.GET("/ws/views/:id", NewHandler(views, rec, nil).HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		views.CloseAll()
	})
	return views, srv, rec
}

func dial(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/views/" + id
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// next reads until a message of type typ arrives.
func next(t *testing.T, c *websocket.Conn, typ string) overlay.Message {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var m overlay.Message
		require.NoError(t, c.ReadJSON(&m))
		if m.Type == typ {
			return m
		}
	}
}

func TestFindOverSocket(t *testing.T) {
	views, srv, rec := setup(t)
	view, err := views.Open(context.Background(), "doc.html")
	require.NoError(t, err)

	c := dial(t, srv, view.ID)
	require.NoError(t, c.WriteJSON(Inbound{Type: TypeFind, Text: "one"}))

	m := next(t, c, overlay.MsgSearch)
	assert.Equal(t, 2, m.Count)

	require.NoError(t, c.WriteJSON(Inbound{Type: TypeAction, Action: string(overlay.ActionFindNext)}))
	m = next(t, c, overlay.MsgSearch)
	assert.Equal(t, 2, m.Count)
	assert.Contains(t, rec.seen(), "find-all")
}

func TestBroadcastToEveryPage(t *testing.T) {
	views, srv, _ := setup(t)
	view, err := views.Open(context.Background(), "doc.html")
	require.NoError(t, err)

	a := dial(t, srv, view.ID)
	b := dial(t, srv, view.ID)
	require.NoError(t, a.WriteJSON(Inbound{Type: TypeFind, Text: "two"}))

	assert.Equal(t, 1, next(t, a, overlay.MsgSearch).Count)
	assert.Equal(t, 1, next(t, b, overlay.MsgSearch).Count)
}

func TestPingAndErrors(t *testing.T) {
	views, srv, _ := setup(t)
	view, err := views.Open(context.Background(), "doc.html")
	require.NoError(t, err)

	c := dial(t, srv, view.ID)
	require.NoError(t, c.WriteJSON(Inbound{Type: TypePing}))
	next(t, c, "pong")

	require.NoError(t, c.WriteJSON(Inbound{Type: "dance"}))
	assert.Contains(t, next(t, c, overlay.MsgError).Message, "unknown message type")

	require.NoError(t, c.WriteJSON(Inbound{Type: TypeAction, Action: "explode"}))
	next(t, c, overlay.MsgError)
}

func TestClosingViewEndsSocket(t *testing.T) {
	views, srv, _ := setup(t)
	view, err := views.Open(context.Background(), "doc.html")
	require.NoError(t, err)

	c := dial(t, srv, view.ID)
	require.NoError(t, views.Close(view.ID))

	next(t, c, overlay.MsgCloseFind)
	_, _, err = c.ReadMessage()
	assert.Error(t, err)
}

func TestUnknownView(t *testing.T) {
	_, srv, _ := setup(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/views/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}

package browser

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

type mockContext struct {
	mock.Mock
}

func (m *mockContext) App() types.AppID { return types.Browser }

func (m *mockContext) Notify(title, body string) {
	m.Called(title, body)
}

func (m *mockContext) RootPosition() types.Point { return types.Point{} }

func (m *mockContext) Bounds() (types.Rect, bool) { return types.Rect{}, false }

// stubFetcher serves canned pages. Addresses in block wait for cancellation.
type stubFetcher struct {
	mu     sync.Mutex
	pages  map[string]Page
	block  map[string]bool
	calls  []string
	closed bool
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	s.mu.Lock()
	s.calls = append(s.calls, rawURL)
	page, ok := s.pages[rawURL]
	blocked := s.block[rawURL]
	s.mu.Unlock()

	if blocked {
		<-ctx.Done()
		return Page{}, ctx.Err()
	}
	if !ok {
		return Page{}, &StatusError{Code: 404, URL: rawURL}
	}
	return page, nil
}

func (s *stubFetcher) Close() error {
	s.closed = true
	return nil
}

func newStub() *stubFetcher {
	return &stubFetcher{
		pages: map[string]Page{
			"https://peak.test/": {
				URL:    "https://peak.test/",
				Title:  "Peak",
				Blocks: []string{"Welcome"},
				Links:  []Link{{Text: "Docs", Href: "https://peak.test/docs"}},
			},
			"https://peak.test/docs": {URL: "https://peak.test/docs", Title: "Docs"},
		},
		block: map[string]bool{},
	}
}

// run executes task and returns the single message it reports.
func run(t *testing.T, task host.Task[Msg]) Msg {
	t.Helper()
	require.NotNil(t, task)
	var msgs []Msg
	task(context.Background(), func(m Msg) { msgs = append(msgs, m) })
	require.Len(t, msgs, 1)
	return msgs[0]
}

func navigate(t *testing.T, b *Browser, msg Msg) {
	t.Helper()
	ctx := &mockContext{}
	result := run(t, b.Update(msg, ctx))
	b.Update(result, ctx)
}

func TestNavigateLoadsPage(t *testing.T) {
	b := NewWithFetcher(Config{Home: "peak.test/"}, newStub(), nil)

	task := b.Update(Navigate{}, &mockContext{})
	assert.True(t, b.Loading())
	assert.Equal(t, "https://peak.test/", b.URL())

	b.Update(run(t, task), &mockContext{})
	assert.False(t, b.Loading())

	page, ok := b.Page()
	require.True(t, ok)
	assert.Equal(t, "Peak", page.Title)
	assert.Equal(t, "Browser - Peak", b.Title())
}

func TestFollowAndBack(t *testing.T) {
	b := NewWithFetcher(Config{}, newStub(), nil)

	navigate(t, b, Navigate{URL: "https://peak.test/"})
	navigate(t, b, Follow{Index: 0})
	assert.Equal(t, "https://peak.test/docs", b.URL())
	assert.Equal(t, []string{"https://peak.test/"}, b.History())

	assert.Nil(t, b.Update(Follow{Index: 5}, &mockContext{}), "out of range link is ignored")

	navigate(t, b, Back{})
	assert.Equal(t, "https://peak.test/", b.URL())
	assert.Empty(t, b.History())
	assert.Nil(t, b.Update(Back{}, &mockContext{}))
}

func TestStaleResultIsDropped(t *testing.T) {
	b := NewWithFetcher(Config{}, newStub(), nil)
	ctx := &mockContext{}

	first := b.Update(Navigate{URL: "https://peak.test/"}, ctx)
	second := b.Update(Navigate{URL: "https://peak.test/docs"}, ctx)

	b.Update(run(t, second), ctx)
	b.Update(run(t, first), ctx)

	page, ok := b.Page()
	require.True(t, ok)
	assert.Equal(t, "Docs", page.Title)
}

func TestFailureNotifies(t *testing.T) {
	b := NewWithFetcher(Config{}, newStub(), nil)

	ctx := &mockContext{}
	ctx.On("Notify", "Browser", "Could not load https://peak.test/missing").Once()

	result := run(t, b.Update(Navigate{URL: "peak.test/missing"}, ctx))
	b.Update(result, ctx)

	ctx.AssertExpectations(t)
	assert.False(t, b.Loading())
	assert.Contains(t, host.PlainText(b.View(types.Theme{})), "HTTP 404")
}

func TestInvalidAddressNotifies(t *testing.T) {
	b := NewWithFetcher(Config{}, newStub(), nil)

	ctx := &mockContext{}
	ctx.On("Notify", "Browser", mock.AnythingOfType("string")).Twice()

	assert.Nil(t, b.Update(Navigate{URL: "ftp://peak.test"}, ctx))
	assert.Nil(t, b.Update(Navigate{}, ctx), "no home page configured")
	ctx.AssertExpectations(t)
}

func TestClosingWindowCancelsNavigation(t *testing.T) {
	stub := newStub()
	stub.block["https://slow.test"] = true
	b := NewWithFetcher(Config{}, stub, nil)
	ctx := &mockContext{}

	b.WindowLayoutChanged(types.Size{Width: 800, Height: 600})
	require.True(t, b.Visible())

	task := b.Update(Navigate{URL: "https://slow.test"}, ctx)
	out := make(chan Msg, 1)
	go task(context.Background(), func(m Msg) { out <- m })

	b.WindowLayoutChanged(types.Size{})
	assert.False(t, b.Visible())

	var msg Msg
	select {
	case msg = <-out:
	case <-time.After(2 * time.Second):
		t.Fatal("navigation was not cancelled")
	}
	failed, ok := msg.(Failed)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, context.Canceled)

	b.Update(msg, ctx)
	assert.False(t, b.Loading())
	assert.Contains(t, host.PlainText(b.View(types.Theme{})), "Stopped")
	ctx.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestReload(t *testing.T) {
	stub := newStub()
	b := NewWithFetcher(Config{}, stub, nil)

	assert.Nil(t, b.Update(Reload{}, &mockContext{}), "nothing to reload")
	navigate(t, b, Navigate{URL: "https://peak.test/"})
	navigate(t, b, Reload{})

	assert.Equal(t, []string{"https://peak.test/", "https://peak.test/"}, stub.calls)
	assert.Empty(t, b.History(), "reload does not grow history")
}

func TestDecode(t *testing.T) {
	b := NewWithFetcher(Config{}, newStub(), nil)

	tests := []struct {
		name    string
		raw     string
		want    Msg
		wantErr error
	}{
		{name: "url", raw: `{"url":"example.com"}`, want: Navigate{URL: "example.com"}},
		{name: "follow", raw: `{"follow":2}`, want: Follow{Index: 2}},
		{name: "back", raw: `{"back":true}`, want: Back{}},
		{name: "reload", raw: `{"reload":true}`, want: Reload{}},
		{name: "home", raw: `{"home":true}`, want: Navigate{}},
		{name: "nothing", raw: `{}`, wantErr: ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Decode([]byte(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestViewLiftsLinksThroughHost(t *testing.T) {
	b := NewWithFetcher(Config{}, newStub(), nil)
	navigate(t, b, Navigate{URL: "https://peak.test/"})
	adapter := host.Host[Msg](types.Browser, b)

	var actions []host.Msg
	host.Walk(adapter.View(types.Theme{}), func(n host.Node) bool {
		if n.Action != nil {
			actions = append(actions, n.Action)
		}
		return true
	})
	assert.Contains(t, actions, host.AppMsg{App: types.Browser, Payload: Follow{Index: 0}})
	assert.Contains(t, actions, host.AppMsg{App: types.Browser, Payload: Back{}})
	assert.Contains(t, host.PlainText(adapter.View(types.Theme{})), "[Docs]")
}

func TestCloseReleasesFetcher(t *testing.T) {
	stub := newStub()
	b := NewWithFetcher(Config{}, stub, nil)

	require.NoError(t, b.Close())
	assert.True(t, stub.closed)
	assert.NoError(t, b.Close(), "close is repeatable")
}

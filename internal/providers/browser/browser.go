package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// ErrEmptyInput is returned by Decode for a payload that names no action.
var ErrEmptyInput = errors.New("browser input has no action")

// Msg is the Browser's private message type.
type Msg interface{ browserMsg() }

// Navigate loads URL. An empty URL loads the home page.
type Navigate struct{ URL string }

// Follow navigates to the page link at Index.
type Follow struct{ Index int }

// Back returns to the previous page.
type Back struct{}

// Reload fetches the current page again.
type Reload struct{}

// Loaded delivers the result of navigation Seq.
type Loaded struct {
	Seq  uint64
	Page Page
}

// Failed reports that navigation Seq did not complete.
type Failed struct {
	Seq uint64
	URL string
	Err error
}

func (Navigate) browserMsg() {}
func (Follow) browserMsg()   {}
func (Back) browserMsg()     {}
func (Reload) browserMsg()   {}
func (Loaded) browserMsg()   {}
func (Failed) browserMsg()   {}

// Config configures the browser.
type Config struct {
	Home        string
	Timeout     time.Duration
	UserAgent   string
	MaxFailures uint32
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxFailures == 0 {
		c.MaxFailures = DefaultMaxFailures
	}
	return c
}

// Browser is the web browser app.
type Browser struct {
	cfg   Config
	fetch Fetcher
	log   *logging.Logger

	url     string
	page    *Page
	history []string
	loading bool
	status  string
	visible bool

	seq    uint64
	cancel context.CancelFunc
}

// New creates a Browser that fetches over HTTP.
func New(cfg Config, log *logging.Logger) *Browser {
	return NewWithFetcher(cfg, NewHTTPFetcher(cfg, log), log)
}

// NewWithFetcher creates a Browser with a custom fetcher.
func NewWithFetcher(cfg Config, fetch Fetcher, log *logging.Logger) *Browser {
	if log == nil {
		log = logging.NewNop()
	}
	return &Browser{
		cfg:   cfg.withDefaults(),
		fetch: fetch,
		log:   log.Named("browser"),
	}
}

// URL returns the current address.
func (b *Browser) URL() string { return b.url }

// Page returns the loaded page, if any.
func (b *Browser) Page() (Page, bool) {
	if b.page == nil {
		return Page{}, false
	}
	return *b.page, true
}

// Loading reports whether a navigation is in flight.
func (b *Browser) Loading() bool { return b.loading }

// History returns the back stack, oldest first.
func (b *Browser) History() []string {
	return append([]string(nil), b.history...)
}

func (b *Browser) Title() string {
	if b.page != nil && b.page.Title != "" {
		return "Browser - " + b.page.Title
	}
	return "Browser"
}

func (b *Browser) Update(msg Msg, ctx host.ShellContext) host.Task[Msg] {
	switch m := msg.(type) {
	case Navigate:
		raw := m.URL
		if raw == "" {
			raw = b.cfg.Home
		}
		target, err := NormalizeURL(raw)
		if err != nil {
			b.status = err.Error()
			ctx.Notify("Browser", err.Error())
			return nil
		}
		b.pushHistory()
		return b.load(target)
	case Follow:
		if b.page == nil || m.Index < 0 || m.Index >= len(b.page.Links) {
			return nil
		}
		b.pushHistory()
		return b.load(b.page.Links[m.Index].Href)
	case Back:
		if len(b.history) == 0 {
			return nil
		}
		prev := b.history[len(b.history)-1]
		b.history = b.history[:len(b.history)-1]
		return b.load(prev)
	case Reload:
		if b.url == "" {
			return nil
		}
		return b.load(b.url)
	case Loaded:
		if m.Seq != b.seq {
			return nil
		}
		page := m.Page
		b.page = &page
		b.url = page.URL
		b.loading = false
		b.status = ""
	case Failed:
		if m.Seq != b.seq {
			return nil
		}
		b.loading = false
		if errors.Is(m.Err, context.Canceled) {
			b.status = "Stopped"
			return nil
		}
		b.status = m.Err.Error()
		b.log.Info("Navigation failed", zap.String("url", m.URL), zap.Error(m.Err))
		ctx.Notify("Browser", fmt.Sprintf("Could not load %s", m.URL))
	}
	return nil
}

func (b *Browser) pushHistory() {
	if b.page != nil && b.url != "" {
		b.history = append(b.history, b.url)
	}
}

// load supersedes any navigation in flight and returns the task fetching
// target. The task is also cancelled when the window closes.
func (b *Browser) load(target string) host.Task[Msg] {
	b.stop()
	b.seq++
	b.url = target
	b.loading = true
	b.status = ""

	seq, fetch := b.seq, b.fetch
	nav, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	return func(ctx context.Context, emit func(Msg)) {
		ctx, done := context.WithCancel(ctx)
		defer done()
		unlink := context.AfterFunc(nav, done)
		defer unlink()

		page, err := fetch.Fetch(ctx, target)
		if err != nil {
			emit(Failed{Seq: seq, URL: target, Err: err})
			return
		}
		emit(Loaded{Seq: seq, Page: page})
	}
}

func (b *Browser) stop() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

func (b *Browser) View(theme types.Theme) host.Node {
	address := b.url
	if address == "" {
		address = "about:blank"
	}
	toolbar := host.Row(
		host.Button("Back", Back{}),
		host.Button("Reload", Reload{}),
		host.Button("Home", Navigate{}),
		host.Text(address).WithProp("color", theme.Accent),
	)

	body := []host.Node{toolbar}
	switch {
	case b.loading:
		body = append(body, host.Text("Loading..."))
	case b.status != "":
		body = append(body, host.Text(b.status).WithProp("color", theme.Accent))
	}

	if b.page == nil {
		if !b.loading {
			body = append(body, host.Text("Enter an address to start browsing"))
		}
		return host.Column(body...)
	}

	body = append(body, host.Text(b.page.Title).WithProp("weight", "bold"))
	if b.page.Description != "" {
		body = append(body, host.Text(b.page.Description))
	}
	for _, block := range b.page.Blocks {
		body = append(body, host.Text(block).WithProp("color", theme.Text))
	}
	for i, link := range b.page.Links {
		body = append(body, host.Button(link.Text, Follow{Index: i}))
	}
	return host.Column(body...)
}

// Stream is nil: the browser has no background work of its own.
func (b *Browser) Stream() host.Stream[Msg] {
	return nil
}

// WindowLayoutChanged tracks visibility. A zero size means the window closed,
// which stops the navigation in flight.
func (b *Browser) WindowLayoutChanged(size types.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		if b.visible {
			b.log.Debug("Browser window closed")
		}
		b.visible = false
		b.stop()
		return
	}
	b.visible = true
}

// Visible reports whether the browser window currently has a non-zero size.
func (b *Browser) Visible() bool { return b.visible }

type inputPayload struct {
	URL    *string `json:"url"`
	Follow *int    `json:"follow"`
	Back   bool    `json:"back"`
	Reload bool    `json:"reload"`
	Home   bool    `json:"home"`
}

// Decode accepts {"url": "..."}, {"follow": n}, {"back": true},
// {"reload": true} or {"home": true}.
func (b *Browser) Decode(raw []byte) (Msg, error) {
	var p inputPayload
	if err := sonic.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("invalid browser input: %w", err)
	}
	switch {
	case p.URL != nil:
		return Navigate{URL: *p.URL}, nil
	case p.Follow != nil:
		return Follow{Index: *p.Follow}, nil
	case p.Back:
		return Back{}, nil
	case p.Reload:
		return Reload{}, nil
	case p.Home:
		return Navigate{}, nil
	}
	return nil, ErrEmptyInput
}

// Close stops any navigation and releases the fetcher.
func (b *Browser) Close() error {
	b.stop()
	if c, ok := b.fetch.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

var (
	_ host.App[Msg]     = (*Browser)(nil)
	_ host.Decoder[Msg] = (*Browser)(nil)
	_ host.LayoutAware  = (*Browser)(nil)
	_ io.Closer         = (*Browser)(nil)
	_ Fetcher           = (*HTTPFetcher)(nil)
)

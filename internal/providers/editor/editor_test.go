package editor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

type mockContext struct {
	mock.Mock
}

func (m *mockContext) App() types.AppID { return types.Editor }

func (m *mockContext) Notify(title, body string) {
	m.Called(title, body)
}

func (m *mockContext) RootPosition() types.Point { return types.Point{} }

func (m *mockContext) Bounds() (types.Rect, bool) { return types.Rect{}, false }

// run executes task and returns the single message it reports.
func run(t *testing.T, task host.Task[Msg]) Msg {
	t.Helper()
	require.NotNil(t, task)
	var msgs []Msg
	task(context.Background(), func(m Msg) { msgs = append(msgs, m) })
	require.Len(t, msgs, 1)
	return msgs[0]
}

func TestEditingMarksDirty(t *testing.T) {
	e := New("", nil)
	ctx := &mockContext{}

	assert.Nil(t, e.Update(SetText{Text: "hello"}, ctx))
	assert.Nil(t, e.Update(Append{Text: " world"}, ctx))
	assert.Equal(t, "hello world", e.Text())
	assert.True(t, e.Dirty())
}

func TestSaveWritesFileAndNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "notes.txt")
	e := New(path, nil)
	ctx := &mockContext{}
	ctx.On("Notify", "Editor", "Saved notes.txt").Once()

	e.Update(SetText{Text: "draft"}, ctx)
	msg := run(t, e.Update(Save{}, ctx))
	assert.Equal(t, Saved{Path: path, Bytes: 5}, msg)
	assert.True(t, e.Dirty(), "buffer stays dirty until the save is reported")

	e.Update(msg, ctx)
	assert.False(t, e.Dirty())
	assert.Equal(t, "Saved 5 bytes", e.Status())
	ctx.AssertExpectations(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "draft", string(data))
}

func TestSaveFailureNotifies(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, nil)
	ctx := &mockContext{}
	ctx.On("Notify", "Editor", mock.MatchedBy(func(body string) bool {
		return strings.HasPrefix(body, "Save failed:")
	})).Once()

	e.Update(SetText{Text: "x"}, ctx)
	msg := run(t, e.Update(Save{}, ctx))
	require.IsType(t, SaveFailed{}, msg)

	e.Update(msg, ctx)
	assert.True(t, e.Dirty())
	ctx.AssertExpectations(t)
}

func TestSaveWithoutPath(t *testing.T) {
	e := New("", nil)
	ctx := &mockContext{}
	ctx.On("Notify", "Editor", "Save failed: no file path configured").Once()

	assert.Nil(t, e.Update(Save{}, ctx))
	ctx.AssertExpectations(t)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "readme.md")
	require.NoError(t, os.WriteFile(textPath, []byte("# Title\n\nbody text\n"), 0o644))

	e := New(textPath, nil)
	ctx := &mockContext{}
	msg := run(t, e.Update(Load{}, ctx))
	loaded, ok := msg.(Loaded)
	require.True(t, ok, "got %#v", msg)

	e.Update(loaded, ctx)
	assert.Equal(t, "# Title\n\nbody text\n", e.Text())
	assert.False(t, e.Dirty())
	assert.True(t, strings.HasPrefix(e.Status(), "Opened readme.md"))

	binPath := filepath.Join(dir, "image.png")
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 32)...)
	require.NoError(t, os.WriteFile(binPath, png, 0o644))

	e = New(binPath, nil)
	ctx.On("Notify", "Editor", mock.AnythingOfType("string")).Once()
	msg = run(t, e.Update(Load{}, ctx))
	failed, ok := msg.(LoadFailed)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, ErrNotText)

	e.Update(failed, ctx)
	ctx.AssertExpectations(t)
}

func TestDecodeTranscodesLatin1(t *testing.T) {
	sentence := "Le caf\xe9 de la gare est ouvert le matin, et le th\xe9 est servi chaud. "
	doc, err := Decode([]byte(strings.Repeat(sentence, 8)))
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(doc.Text))
	assert.Contains(t, doc.Text, "café")
	assert.NotEqual(t, "utf-8", doc.Charset)
}

func TestDecodeEmpty(t *testing.T) {
	doc, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, Document{MIME: "text/plain", Charset: "utf-8"}, doc)
}

func TestDecodeInput(t *testing.T) {
	e := New("", nil)

	tests := []struct {
		raw  string
		want Msg
	}{
		{raw: `{"text":"abc"}`, want: SetText{Text: "abc"}},
		{raw: `{"append":"!"}`, want: Append{Text: "!"}},
		{raw: `{"save":true}`, want: Save{}},
		{raw: `{"load":true}`, want: Load{}},
	}
	for _, tt := range tests {
		got, err := e.Decode([]byte(tt.raw))
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	_, err := e.Decode([]byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestViewThroughHost(t *testing.T) {
	e := New("/tmp/notes.txt", nil)
	adapter := host.Host[Msg](types.Editor, e)
	e.Update(SetText{Text: "hi"}, &mockContext{})

	view := adapter.View(types.Theme{})
	assert.Equal(t, "notes.txt * [Open] [Save]\nhi\ntext/plain · utf-8", host.PlainText(view))

	var actions []host.Msg
	host.Walk(view, func(n host.Node) bool {
		if n.Action != nil {
			actions = append(actions, n.Action)
		}
		return true
	})
	assert.Equal(t, []host.Msg{
		host.AppMsg{App: types.Editor, Payload: Load{}},
		host.AppMsg{App: types.Editor, Payload: Save{}},
	}, actions)
	assert.Nil(t, adapter.Stream())
}

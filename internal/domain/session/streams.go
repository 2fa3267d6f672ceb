package session

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// activeStream is one activation of an app's background stream. A nil
// cancel means the app had no stream or its stream already finished.
type activeStream struct {
	gen    uint64
	app    host.HostedApp
	cancel context.CancelFunc
}

// streamEnded reports that a stream returned on its own.
type streamEnded struct {
	app types.AppID
	gen uint64
}

// reconcileStreams makes the running set exactly the streams of visible,
// registered apps.
func (s *Session) reconcileStreams() {
	desired := make(map[types.AppID]host.HostedApp)
	for _, w := range s.windows.Windows() {
		if !window.IsVisible(w, s.persona, s.workspace) {
			continue
		}
		if app, ok := s.registry.Get(w.Owner); ok {
			desired[w.Owner] = app
		}
	}

	for id, st := range s.streams {
		if app, ok := desired[id]; ok && app == st.app {
			continue
		}
		s.stopStream(id)
	}

	ids := make([]types.AppID, 0, len(desired))
	for id := range desired {
		if _, running := s.streams[id]; !running {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		s.startStream(id, desired[id])
	}

	s.metrics.SetStreamsActive(len(s.ActiveStreams()))
}

func (s *Session) startStream(id types.AppID, app host.HostedApp) {
	s.gen++
	st := &activeStream{gen: s.gen, app: app}
	s.streams[id] = st

	sub := app.Stream()
	if sub == nil {
		return
	}

	ctx, cancel := context.WithCancel(s.ctx)
	st.cancel = cancel
	dispatch, gen := s.dispatch, st.gen

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		sub(ctx, func(m host.Msg) {
			if ctx.Err() != nil {
				return
			}
			dispatch(streamMsg{app: id, gen: gen, msg: m})
		})
		if ctx.Err() == nil {
			dispatch(streamEnded{app: id, gen: gen})
		}
	}()

	s.log.Debug("stream activated", logging.App(id), zap.Uint64("generation", gen))
}

func (s *Session) stopStream(id types.AppID) {
	st, ok := s.streams[id]
	if !ok {
		return
	}
	delete(s.streams, id)
	if st.cancel != nil {
		st.cancel()
		s.log.Debug("stream deactivated", logging.App(id), zap.Uint64("generation", st.gen))
	}
}

// streamOutput routes a stream message to its app if the activation that
// produced it is still current.
func (s *Session) streamOutput(m streamMsg) host.Cmd {
	st, ok := s.streams[m.app]
	if !ok || st.gen != m.gen || st.cancel == nil {
		return nil
	}
	return st.app.Update(m.msg, s.contextFor(m.app))
}

func (s *Session) streamFinished(m streamEnded) {
	st, ok := s.streams[m.app]
	if !ok || st.gen != m.gen || st.cancel == nil {
		return
	}
	st.cancel()
	st.cancel = nil
	s.log.Debug("stream finished", logging.App(m.app), zap.Uint64("generation", m.gen))
}

// StreamActive reports whether id's background stream is running.
func (s *Session) StreamActive(id types.AppID) bool {
	st, ok := s.streams[id]
	return ok && st.cancel != nil
}

// ActiveStreams returns the apps with a running stream in AppID order.
func (s *Session) ActiveStreams() []types.AppID {
	out := make([]types.AppID, 0, len(s.streams))
	for id, st := range s.streams {
		if st.cancel != nil {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

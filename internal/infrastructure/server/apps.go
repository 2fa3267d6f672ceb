package server

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/PeakOS/backend/internal/domain/host"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/PeakOS/backend/internal/providers/browser"
	"github.com/GriffinCanCode/PeakOS/backend/internal/providers/editor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/providers/monitor"
	"github.com/GriffinCanCode/PeakOS/backend/internal/providers/terminal"
	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// AppFactory builds the hosted app for one identity.
type AppFactory func(cfg *config.Config, log *logging.Logger) host.HostedApp

// Factories maps app identities to their implementations. Identities without
// an entry are shown as placeholders.
var Factories = map[types.AppID]AppFactory{
	types.Terminal: func(cfg *config.Config, log *logging.Logger) host.HostedApp {
		term := terminal.New(terminal.Config{
			Shell: cfg.Terminal.Shell,
			Dir:   cfg.Terminal.Dir,
		}, log)
		return host.Host[terminal.Msg](types.Terminal, term)
	},
	types.Cortex: func(cfg *config.Config, _ *logging.Logger) host.HostedApp {
		return host.Host[monitor.Msg](types.Cortex, monitor.New(cfg.Monitor.Interval))
	},
	types.Editor: func(cfg *config.Config, log *logging.Logger) host.HostedApp {
		return host.Host[editor.Msg](types.Editor, editor.New(cfg.Editor.Path, log))
	},
	types.Browser: func(cfg *config.Config, log *logging.Logger) host.HostedApp {
		b := browser.New(browser.Config{
			Home:        cfg.Browser.HomeURL,
			Timeout:     cfg.Browser.Timeout,
			UserAgent:   cfg.Browser.UserAgent,
			MaxFailures: cfg.Browser.MaxFailures,
		}, log)
		return host.Host[browser.Msg](types.Browser, b)
	},
}

// BuildApps creates the apps configured in PEAK_APPS.
func BuildApps(cfg *config.Config, log *logging.Logger) (map[types.AppID]host.HostedApp, error) {
	ids, err := cfg.Shell.AppIDs()
	if err != nil {
		return nil, err
	}

	apps := make(map[types.AppID]host.HostedApp, len(ids))
	for _, id := range ids {
		factory, ok := Factories[id]
		if !ok {
			log.Warn("No implementation for app, it will show as a placeholder", logging.App(id))
			continue
		}
		if _, dup := apps[id]; dup {
			continue
		}
		apps[id] = factory(cfg, log)
		log.Debug("App built", logging.App(id), zap.String("title", apps[id].Title()))
	}
	return apps, nil
}

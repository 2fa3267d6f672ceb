package registry

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/PeakOS/backend/internal/shared/types"
)

// FallbackTitle is shown for apps without a catalog title.
const FallbackTitle = "Application"

//go:embed catalog.yaml
var defaultCatalog []byte

// AppInfo is the static metadata of one app.
type AppInfo struct {
	ID        types.AppID `yaml:"-" toml:"-" json:"id"`
	Name      string      `yaml:"name" toml:"name" json:"name"`
	Title     string      `yaml:"title" toml:"title" json:"title"`
	Width     float64     `yaml:"width" toml:"width" json:"width"`
	Height    float64     `yaml:"height" toml:"height" json:"height"`
	Resizable bool        `yaml:"resizable" toml:"resizable" json:"resizable"`
	Pinned    bool        `yaml:"pinned" toml:"pinned" json:"pinned"`
}

// DefaultSize returns the initial window size.
func (i AppInfo) DefaultSize() types.Size {
	return types.Size{Width: i.Width, Height: i.Height}
}

type catalogFile struct {
	Apps map[string]AppInfo `yaml:"apps" toml:"apps"`
}

// Catalog maps every AppID to its metadata.
type Catalog struct {
	apps map[types.AppID]AppInfo
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return fromFile(f)
}

// LoadCatalog reads an override file and merges it over the embedded
// defaults. An empty path returns the defaults. Files ending in .toml are read
// as TOML, everything else as YAML.
func LoadCatalog(path string) (*Catalog, error) {
	base := DefaultCatalog()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	var f overrideFile
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	for name, o := range f.Apps {
		id, err := types.ParseAppID(name)
		if err != nil {
			return nil, fmt.Errorf("catalog entry: %w", err)
		}
		info, ok := base.apps[id]
		if !ok {
			info = AppInfo{ID: id}
		}
		base.apps[id] = o.apply(info)
	}
	return base, nil
}

func fromFile(f catalogFile) (*Catalog, error) {
	c := &Catalog{apps: make(map[types.AppID]AppInfo, len(f.Apps))}
	for name, info := range f.Apps {
		id, err := types.ParseAppID(name)
		if err != nil {
			return nil, fmt.Errorf("catalog entry: %w", err)
		}
		info.ID = id
		c.apps[id] = info
	}
	return c, nil
}

type overrideFile struct {
	Apps map[string]appOverride `yaml:"apps" toml:"apps"`
}

// appOverride is one entry of an override file. Unset fields keep the
// embedded value; the booleans are pointers so an explicit false is seen.
type appOverride struct {
	Name      string  `yaml:"name" toml:"name"`
	Title     string  `yaml:"title" toml:"title"`
	Width     float64 `yaml:"width" toml:"width"`
	Height    float64 `yaml:"height" toml:"height"`
	Resizable *bool   `yaml:"resizable" toml:"resizable"`
	Pinned    *bool   `yaml:"pinned" toml:"pinned"`
}

func (o appOverride) apply(base AppInfo) AppInfo {
	if o.Name != "" {
		base.Name = o.Name
	}
	if o.Title != "" {
		base.Title = o.Title
	}
	if o.Width > 0 {
		base.Width = o.Width
	}
	if o.Height > 0 {
		base.Height = o.Height
	}
	if o.Resizable != nil {
		base.Resizable = *o.Resizable
	}
	if o.Pinned != nil {
		base.Pinned = *o.Pinned
	}
	return base
}

// Info returns metadata for id. Apps missing from the catalog get their tag
// name, the fallback title and an 800x600 resizable window.
func (c *Catalog) Info(id types.AppID) AppInfo {
	if info, ok := c.apps[id]; ok {
		if info.Name == "" {
			info.Name = id.String()
		}
		if info.Title == "" {
			info.Title = FallbackTitle
		}
		if info.Width <= 0 || info.Height <= 0 {
			info.Width, info.Height = 800, 600
		}
		return info
	}
	return AppInfo{ID: id, Name: id.String(), Title: FallbackTitle, Width: 800, Height: 600, Resizable: true}
}

// Title returns the fallback window title for id.
func (c *Catalog) Title(id types.AppID) string {
	return c.Info(id).Title
}

// DefaultSize returns the initial window size for id.
func (c *Catalog) DefaultSize(id types.AppID) types.Size {
	return c.Info(id).DefaultSize()
}

// Pinned returns the dock-pinned apps in AppID order.
func (c *Catalog) Pinned() []types.AppID {
	var out []types.AppID
	for _, id := range types.AllApps() {
		if c.Info(id).Pinned {
			out = append(out, id)
		}
	}
	return out
}

// Apps returns metadata for every AppID in declaration order.
func (c *Catalog) Apps() []AppInfo {
	out := make([]AppInfo, 0, len(types.AllApps()))
	for _, id := range types.AllApps() {
		out = append(out, c.Info(id))
	}
	return out
}

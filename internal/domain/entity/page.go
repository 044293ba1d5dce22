package entity

type ContextID string

// BrowsingContext is one window or tab.
type BrowsingContext struct {
	ID    ContextID
	URL   string
	Title string
}

// ElementHandle is an opaque reference to a node inside one browsing context.
// Only the driver that issued it can dereference ID. It goes stale when the
// context navigates or the node is detached.
type ElementHandle struct {
	ID      string
	Context ContextID
	Locator Locator
}

type ElementState struct {
	Tag      string
	Text     string
	Visible  bool
	Enabled  bool
	Obscured bool
}

func (s ElementState) Clickable() bool {
	return s.Visible && s.Enabled && !s.Obscured
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Snapshot is what gets written to disk when a journey fails.
type Snapshot struct {
	ScreenshotPath string
	HTMLPath       string
	URL            string
}

package fakedriver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"

	"github.com/benbjohnson/clock"
)

var _ output.DriverPort = (*Driver)(nil)

// Page builds a fresh element tree every time its URL is loaded.
type Page struct {
	Title string
	Build func() []*Element
}

type Tab struct {
	ID    entity.ContextID
	URL   string
	Title string
	Root  []*Element

	driver   *Driver
	loadedAt int64
}

type Driver struct {
	mu sync.Mutex

	Clock clock.Clock
	Pages map[string]Page

	// SpawnDelay delays the appearance of tabs opened by target=_blank links.
	SpawnDelay time.Duration

	tabs     []*Tab
	pending  []*Tab
	active   int
	nextID   int
	nextTab  int
	elements map[string]*Element

	Scripts   []string
	Clicks    []string
	Switches  []entity.ContextID
	Navigated []string
}

func New(clk clock.Clock) *Driver {
	d := &Driver{
		Clock:    clk,
		Pages:    map[string]Page{},
		elements: map[string]*Element{},
	}
	d.tabs = []*Tab{d.newTab()}
	return d
}

func (d *Driver) newTab() *Tab {
	d.nextTab++
	return &Tab{ID: entity.ContextID(fmt.Sprintf("tab-%d", d.nextTab)), URL: "about:blank", driver: d}
}

func (d *Driver) register(tab *Tab, el *Element) {
	el.walk(func(e *Element) {
		if e.id == "" {
			d.nextID++
			e.id = fmt.Sprintf("e%d", d.nextID)
		}
		e.tab = tab
		d.elements[e.id] = e
		for _, c := range e.Children {
			c.parent = e
		}
	})
}

func (d *Driver) load(tab *Tab, url string) error {
	page, ok := d.Pages[url]
	if !ok {
		return fmt.Errorf("net::ERR_NAME_NOT_RESOLVED %s", url)
	}
	for _, el := range tab.Root {
		el.walk(func(e *Element) { delete(d.elements, e.id) })
	}
	tab.URL = url
	tab.Title = page.Title
	tab.Root = nil
	if page.Build != nil {
		tab.Root = page.Build()
	}
	tab.loadedAt = d.Clock.Now().UnixNano()
	for _, el := range tab.Root {
		d.register(tab, el)
	}
	return nil
}

func (d *Driver) activeTab() *Tab {
	d.promotePending()
	return d.tabs[d.active]
}

func (d *Driver) promotePending() {
	now := d.Clock.Now().UnixNano()
	kept := d.pending[:0]
	for _, t := range d.pending {
		if now >= t.loadedAt {
			d.tabs = append(d.tabs, t)
			continue
		}
		kept = append(kept, t)
	}
	d.pending = kept
}

func (d *Driver) since(tab *Tab) int64 {
	return d.Clock.Now().UnixNano() - tab.loadedAt
}

func (d *Driver) present(e *Element) bool {
	if e.tab == nil || d.since(e.tab) < int64(e.AppearAfter) {
		return false
	}
	if e.DetachAfter > 0 && d.since(e.tab) >= int64(e.DetachAfter) {
		return false
	}
	if e.parent != nil {
		return d.present(e.parent)
	}
	return true
}

func (d *Driver) visible(e *Element) bool {
	if e.Hidden || d.since(e.tab) < int64(e.VisibleAfter) {
		return false
	}
	if e.parent != nil {
		return d.visible(e.parent)
	}
	return true
}

func (d *Driver) lookup(h entity.ElementHandle) (*Element, error) {
	e, ok := d.elements[h.ID]
	if !ok || e.tab == nil || e.tab.ID != h.Context {
		return nil, fmt.Errorf("stale element reference: %s", h.ID)
	}
	return e, nil
}

func (d *Driver) handle(e *Element, loc entity.Locator) entity.ElementHandle {
	return entity.ElementHandle{ID: e.id, Context: e.tab.ID, Locator: loc}
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Navigated = append(d.Navigated, url)
	return d.load(d.activeTab(), url)
}

func (d *Driver) FindElements(ctx context.Context, loc entity.Locator) ([]entity.ElementHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []entity.ElementHandle
	for _, root := range d.activeTab().Root {
		root.walk(func(e *Element) {
			if e.matches(loc) && d.present(e) {
				out = append(out, d.handle(e, loc))
			}
		})
	}
	return out, nil
}

// FindWithin searches descendants of parent and, for XPath locators, also its
// following siblings.
func (d *Driver) FindWithin(ctx context.Context, parent entity.ElementHandle, loc entity.Locator) ([]entity.ElementHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.lookup(parent)
	if err != nil {
		return nil, err
	}

	var out []entity.ElementHandle
	collect := func(e *Element) {
		if e != p && e.matches(loc) && d.present(e) {
			out = append(out, d.handle(e, loc))
		}
	}
	p.walk(collect)

	if loc.Strategy == entity.StrategyXPath {
		siblings := p.tab.Root
		if p.parent != nil {
			siblings = p.parent.Children
		}
		after := false
		for _, s := range siblings {
			if s == p {
				after = true
				continue
			}
			if after {
				s.walk(collect)
			}
		}
	}
	return out, nil
}

func (d *Driver) ReadAttribute(ctx context.Context, h entity.ElementHandle, name string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.lookup(h)
	if err != nil {
		return "", false, err
	}
	v, ok := e.Attrs[name]
	return v, ok, nil
}

func (d *Driver) Inspect(ctx context.Context, h entity.ElementHandle) (entity.ElementState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.lookup(h)
	if err != nil {
		return entity.ElementState{}, err
	}
	return entity.ElementState{
		Tag:      e.Tag,
		Text:     e.text(),
		Visible:  d.visible(e),
		Enabled:  !e.Disabled,
		Obscured: e.Obscured,
	}, nil
}

func (d *Driver) Click(ctx context.Context, h entity.ElementHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.lookup(h)
	if err != nil {
		return err
	}
	if !d.visible(e) || e.Obscured {
		return fmt.Errorf("element %s is not interactable", h.ID)
	}
	d.Clicks = append(d.Clicks, e.text())

	if e.OnClick != nil {
		e.OnClick(d, e.tab)
		return nil
	}

	href := e.Attrs["href"]
	if href == "" {
		return nil
	}
	if e.Attrs["target"] == "_blank" {
		tab := d.newTab()
		if err := d.load(tab, href); err != nil {
			return err
		}
		tab.loadedAt += int64(d.SpawnDelay)
		d.pending = append(d.pending, tab)
		return nil
	}
	return d.load(e.tab, href)
}

// SetValue selects the option with the given text on a <select>, or sets the
// value attribute of anything else.
func (d *Driver) SetValue(ctx context.Context, h entity.ElementHandle, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	e, err := d.lookup(h)
	if err != nil {
		return err
	}
	if e.Tag != "select" {
		e.Attrs["value"] = text
		return nil
	}
	for _, opt := range e.Children {
		if opt.Tag == "option" && opt.text() == text {
			e.Attrs["value"] = text
			return nil
		}
	}
	return fmt.Errorf("no option with text %q", text)
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeTab().URL, nil
}

func (d *Driver) PageTitle(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.activeTab().Title, nil
}

func (d *Driver) RunScript(ctx context.Context, src string, args ...any) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Scripts = append(d.Scripts, src)
	return nil, nil
}

func (d *Driver) ListContexts(ctx context.Context) ([]entity.BrowsingContext, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.promotePending()
	out := make([]entity.BrowsingContext, 0, len(d.tabs))
	for _, t := range d.tabs {
		out = append(out, entity.BrowsingContext{ID: t.ID, URL: t.URL, Title: t.Title})
	}
	return out, nil
}

func (d *Driver) ActiveContext(ctx context.Context) (entity.BrowsingContext, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := d.activeTab()
	return entity.BrowsingContext{ID: t.ID, URL: t.URL, Title: t.Title}, nil
}

func (d *Driver) SwitchContext(ctx context.Context, id entity.ContextID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.promotePending()
	for i, t := range d.tabs {
		if t.ID == id {
			d.active = i
			d.Switches = append(d.Switches, id)
			return nil
		}
	}
	return fmt.Errorf("no such browsing context: %s", id)
}

func (d *Driver) Close() {}

// Value returns the value attribute of the first element matching loc.
func (d *Driver) Value(loc entity.Locator) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var v string
	found := false
	for _, root := range d.activeTab().Root {
		root.walk(func(e *Element) {
			if !found && e.matches(loc) {
				v, found = e.Attrs["value"], true
			}
		})
	}
	return v
}

// OpenTab makes a new tab appear immediately, as a popup would.
func (d *Driver) OpenTab(url string) error {
	tab := d.newTab()
	if err := d.load(tab, url); err != nil {
		return err
	}
	d.tabs = append(d.tabs, tab)
	return nil
}

// Elapsed reports how long ago tab loaded its current page. Hooks use it to
// schedule AppearAfter for injected elements.
func (d *Driver) Elapsed(tab *Tab) time.Duration {
	return time.Duration(d.since(tab))
}

// Load navigates tab without taking the lock; for use inside OnClick hooks.
func (d *Driver) Load(tab *Tab, url string) error {
	return d.load(tab, url)
}

func (d *Driver) ClickLog() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return strings.Join(d.Clicks, " | ")
}

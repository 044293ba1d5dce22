package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"strings"
	"sync"
	"time"

	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var (
	_ output.DriverPort  = (*BrowserAdapter)(nil)
	_ output.CapturePort = (*BrowserAdapter)(nil)
	_ output.CookiePort  = (*BrowserAdapter)(nil)
)

const (
	defaultTimeout    = 30 * time.Second
	defaultSlowMotion = 0
	screenshotQuality = 80
)

var ErrClosed = errors.New("browser is closed")

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	// Timeout caps a single driver call such as a navigation. Readiness
	// waits are the resolver's business.
	Timeout   time.Duration
	NoSandbox bool
	DevTools  bool
	// DisableSecurityFeatures turns off web security and allows insecure
	// content. Only for local fixtures.
	DisableSecurityFeatures bool
	Bin                     string
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:   false,
		SlowMotion: defaultSlowMotion,
		Timeout:    defaultTimeout,
	}
}

// BrowserAdapter drives Chrome through the DevTools protocol. Element handles
// are kept in a registry keyed by opaque IDs. A query replaces the handles
// of the previous identical query, navigating a tab invalidates the handles
// that belong to it and switching tabs invalidates those of the tab left.
type BrowserAdapter struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	closed   bool

	nextID   int
	elements map[string]*rod.Element
	queries  map[string][]string
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		Devtools(cfg.DevTools).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain").
		Set("disable-dev-shm-usage").
		Set("disable-popup-blocking").
		Set("window-size", "1920,1080")
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.DisableSecurityFeatures {
		l = l.Set("disable-web-security").Set("allow-running-insecure-content")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url).SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
		elements: make(map[string]*rod.Element),
		queries:  make(map[string][]string),
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.browser != nil && b.page != nil
}

// current returns the active page bound to ctx and the call timeout.
func (b *BrowserAdapter) current(ctx context.Context) (*rod.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	return b.page.Context(ctx).Timeout(b.timeout), nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	page, err := b.current(ctx)
	if err != nil {
		return err
	}
	b.forget(contextID(page))

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) FindElements(ctx context.Context, loc entity.Locator) ([]entity.ElementHandle, error) {
	page, err := b.current(ctx)
	if err != nil {
		return nil, err
	}

	var els rod.Elements
	if loc.Strategy == entity.StrategyXPath {
		els, err = page.ElementsX(loc.Expression)
	} else {
		var sel string
		if sel, err = cssFor(loc); err == nil {
			els, err = page.Elements(sel)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", loc, err)
	}
	return b.register(contextID(page), "", loc, els), nil
}

// FindWithin evaluates XPath relative to parent, so axes such as
// following-sibling work.
func (b *BrowserAdapter) FindWithin(ctx context.Context, parent entity.ElementHandle, loc entity.Locator) ([]entity.ElementHandle, error) {
	p, err := b.lookup(ctx, parent)
	if err != nil {
		return nil, err
	}

	var els rod.Elements
	if loc.Strategy == entity.StrategyXPath {
		els, err = p.ElementsX(loc.Expression)
	} else {
		var sel string
		if sel, err = cssFor(loc); err == nil {
			els, err = p.Elements(sel)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("query %s within %s: %w", loc, parent.Locator, err)
	}
	return b.register(parent.Context, parent.ID, loc, els), nil
}

func (b *BrowserAdapter) ReadAttribute(ctx context.Context, h entity.ElementHandle, name string) (string, bool, error) {
	el, err := b.lookup(ctx, h)
	if err != nil {
		return "", false, err
	}
	v, err := el.Attribute(name)
	if err != nil {
		return "", false, fmt.Errorf("read attribute %s: %w", name, err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (b *BrowserAdapter) Inspect(ctx context.Context, h entity.ElementHandle) (entity.ElementState, error) {
	el, err := b.lookup(ctx, h)
	if err != nil {
		return entity.ElementState{}, err
	}

	tag, err := el.Property("tagName")
	if err != nil {
		return entity.ElementState{}, fmt.Errorf("read tag of %s: %w", h.Locator, err)
	}
	text, err := el.Text()
	if err != nil || strings.TrimSpace(text) == "" {
		if raw, perr := el.Property("textContent"); perr == nil {
			text = raw.Str()
		}
	}
	visible, err := el.Visible()
	if err != nil {
		return entity.ElementState{}, fmt.Errorf("check visibility of %s: %w", h.Locator, err)
	}
	disabled, err := el.Property("disabled")
	if err != nil {
		return entity.ElementState{}, fmt.Errorf("check disabled of %s: %w", h.Locator, err)
	}

	state := entity.ElementState{
		Tag:     strings.ToLower(tag.Str()),
		Text:    strings.TrimSpace(text),
		Visible: visible,
		Enabled: !disabled.Bool(),
	}
	if visible {
		state.Obscured = covered(el)
	}
	return state, nil
}

// covered reports whether another node would receive a click aimed at el.
func covered(el *rod.Element) bool {
	_, err := el.Interactable()
	if err == nil {
		return false
	}
	var c *rod.CoveredError
	var np *rod.NoPointerEventsError
	return errors.As(err, &c) || errors.As(err, &np)
}

func (b *BrowserAdapter) Click(ctx context.Context, h entity.ElementHandle) error {
	el, err := b.lookup(ctx, h)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// SetValue picks the option whose text is exactly text on a <select>, or
// replaces the content of a text field.
func (b *BrowserAdapter) SetValue(ctx context.Context, h entity.ElementHandle, text string) error {
	el, err := b.lookup(ctx, h)
	if err != nil {
		return err
	}

	tag, err := el.Property("tagName")
	if err != nil {
		return fmt.Errorf("read tag of %s: %w", h.Locator, err)
	}
	if strings.EqualFold(tag.Str(), "select") {
		pattern := `^\s*` + regexpQuote(text) + `\s*$`
		if err := el.Select([]string{pattern}, true, rod.SelectorTypeRegex); err != nil {
			return fmt.Errorf("select %q: %w", text, err)
		}
		return nil
	}

	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) CurrentURL(ctx context.Context) (string, error) {
	page, err := b.current(ctx)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.URL, nil
}

func (b *BrowserAdapter) PageTitle(ctx context.Context) (string, error) {
	page, err := b.current(ctx)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.Title, nil
}

// RunScript evaluates a JS function expression such as "() => document.title"
// and returns its JSON value.
func (b *BrowserAdapter) RunScript(ctx context.Context, src string, args ...any) (any, error) {
	page, err := b.current(ctx)
	if err != nil {
		return nil, err
	}
	res, err := page.Eval(src, args...)
	if err != nil {
		return nil, fmt.Errorf("script failed: %w", err)
	}
	return res.Value.Val(), nil
}

func (b *BrowserAdapter) ListContexts(ctx context.Context) ([]entity.BrowsingContext, error) {
	pages, err := b.pages(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]entity.BrowsingContext, 0, len(pages))
	for _, p := range pages {
		bc := entity.BrowsingContext{ID: contextID(p)}
		if info, err := p.Context(ctx).Info(); err == nil {
			bc.URL = info.URL
			bc.Title = info.Title
		}
		out = append(out, bc)
	}
	return out, nil
}

func (b *BrowserAdapter) ActiveContext(ctx context.Context) (entity.BrowsingContext, error) {
	page, err := b.current(ctx)
	if err != nil {
		return entity.BrowsingContext{}, err
	}
	bc := entity.BrowsingContext{ID: contextID(page)}
	info, err := page.Info()
	if err != nil {
		return bc, fmt.Errorf("page info: %w", err)
	}
	bc.URL = info.URL
	bc.Title = info.Title
	return bc, nil
}

func (b *BrowserAdapter) SwitchContext(ctx context.Context, id entity.ContextID) error {
	pages, err := b.pages(ctx)
	if err != nil {
		return err
	}
	for _, p := range pages {
		if contextID(p) != id {
			continue
		}
		if _, err := p.Context(ctx).Activate(); err != nil {
			return fmt.Errorf("activate %s: %w", id, err)
		}
		b.mu.Lock()
		prev := b.page
		b.page = p
		b.mu.Unlock()
		if prev != nil && contextID(prev) != id {
			b.forget(contextID(prev))
		}
		return nil
	}
	return fmt.Errorf("no such browsing context: %s", id)
}

func (b *BrowserAdapter) pages(ctx context.Context) (rod.Pages, error) {
	b.mu.Lock()
	browser, closed := b.browser, b.closed
	b.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	pages, err := browser.Context(ctx).Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

func (b *BrowserAdapter) ClearCookies(ctx context.Context) error {
	b.mu.Lock()
	browser, closed := b.browser, b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := browser.Context(ctx).SetCookies(nil); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}

// Screenshot captures the viewport as JPEG. Downscaling is left to the
// caller.
func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.current(ctx)
	if err != nil {
		return nil, err
	}
	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(screenshotQuality),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	shot := &entity.Screenshot{Data: data, Format: "jpeg"}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		shot.Width, shot.Height = cfg.Width, cfg.Height
	}
	return shot, nil
}

func (b *BrowserAdapter) PageHTML(ctx context.Context) (string, error) {
	page, err := b.current(ctx)
	if err != nil {
		return "", err
	}
	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.elements = map[string]*rod.Element{}
	b.queries = map[string][]string{}

	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

// register issues handles for els. Polling repeats the same query many
// times, so the handles from the previous run of a query are dropped.
func (b *BrowserAdapter) register(ctxID entity.ContextID, parentID string, loc entity.Locator, els rod.Elements) []entity.ElementHandle {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := fmt.Sprintf("%s/%s|%s", ctxID, parentID, loc)
	for _, id := range b.queries[key] {
		delete(b.elements, id)
	}

	out := make([]entity.ElementHandle, 0, len(els))
	ids := make([]string, 0, len(els))
	for _, el := range els {
		b.nextID++
		id := fmt.Sprintf("%s/%d", ctxID, b.nextID)
		b.elements[id] = el
		ids = append(ids, id)
		out = append(out, entity.ElementHandle{ID: id, Context: ctxID, Locator: loc})
	}
	b.queries[key] = ids
	return out
}

func (b *BrowserAdapter) lookup(ctx context.Context, h entity.ElementHandle) (*rod.Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	el, ok := b.elements[h.ID]
	if !ok {
		return nil, fmt.Errorf("stale element reference: %s (%s)", h.ID, h.Locator)
	}
	return el.Context(ctx).Timeout(b.timeout), nil
}

// forget drops every handle issued for a context.
func (b *BrowserAdapter) forget(ctxID entity.ContextID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prefix := string(ctxID) + "/"
	for id := range b.elements {
		if strings.HasPrefix(id, prefix) {
			delete(b.elements, id)
		}
	}
	for key := range b.queries {
		if strings.HasPrefix(key, prefix) {
			delete(b.queries, key)
		}
	}
}

func contextID(p *rod.Page) entity.ContextID {
	return entity.ContextID(p.TargetID)
}

func cssFor(loc entity.Locator) (string, error) {
	switch loc.Strategy {
	case entity.StrategyCSS:
		return loc.Expression, nil
	case entity.StrategyID:
		return "#" + cssEscape(loc.Expression), nil
	case entity.StrategyClass:
		return "." + cssEscape(loc.Expression), nil
	}
	return "", fmt.Errorf("unsupported locator strategy %q", loc.Strategy)
}

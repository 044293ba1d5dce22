package output

import (
	"context"

	"browser-journey/internal/domain/entity"
)

// DriverPort is the capability surface of the browser automation driver.
// Element operations act on the context the handle belongs to; everything
// else acts on the driver's current context, which only the orchestrator
// changes through SwitchContext.
type DriverPort interface {
	Navigate(ctx context.Context, url string) error
	FindElements(ctx context.Context, locator entity.Locator) ([]entity.ElementHandle, error)
	FindWithin(ctx context.Context, parent entity.ElementHandle, locator entity.Locator) ([]entity.ElementHandle, error)
	ReadAttribute(ctx context.Context, el entity.ElementHandle, name string) (value string, ok bool, err error)
	Inspect(ctx context.Context, el entity.ElementHandle) (entity.ElementState, error)
	Click(ctx context.Context, el entity.ElementHandle) error
	SetValue(ctx context.Context, el entity.ElementHandle, text string) error

	CurrentURL(ctx context.Context) (string, error)
	PageTitle(ctx context.Context) (string, error)
	RunScript(ctx context.Context, src string, args ...any) (any, error)

	ListContexts(ctx context.Context) ([]entity.BrowsingContext, error)
	ActiveContext(ctx context.Context) (entity.BrowsingContext, error)
	SwitchContext(ctx context.Context, id entity.ContextID) error

	Close()
}

// CapturePort is implemented by drivers that can produce diagnostic artifacts.
type CapturePort interface {
	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	PageHTML(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) (string, error)
}

type SnapshotPort interface {
	Capture(ctx context.Context, name string) (*entity.Snapshot, error)
}

// CookiePort is implemented by drivers that can drop browser cookies, which
// page scripts cannot fully reach (HttpOnly).
type CookiePort interface {
	ClearCookies(ctx context.Context) error
}

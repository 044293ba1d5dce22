package resolver

import (
	"context"
	"strings"

	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"
)

// Predicate decides whether a matched element is ready. It is evaluated on
// every poll and must not change page state.
type Predicate func(ctx context.Context, d output.DriverPort, el entity.ElementHandle) (bool, error)

// Condition is the page-level counterpart of Predicate.
type Condition func(ctx context.Context, d output.DriverPort) (bool, error)

func Present(context.Context, output.DriverPort, entity.ElementHandle) (bool, error) {
	return true, nil
}

func Visible(ctx context.Context, d output.DriverPort, el entity.ElementHandle) (bool, error) {
	s, err := d.Inspect(ctx, el)
	if err != nil {
		return false, err
	}
	return s.Visible, nil
}

func Clickable(ctx context.Context, d output.DriverPort, el entity.ElementHandle) (bool, error) {
	s, err := d.Inspect(ctx, el)
	if err != nil {
		return false, err
	}
	return s.Clickable(), nil
}

func TitleContains(substr string) Condition {
	return func(ctx context.Context, d output.DriverPort) (bool, error) {
		title, err := d.PageTitle(ctx)
		if err != nil {
			return false, err
		}
		return strings.Contains(title, substr), nil
	}
}

// URLContains compares case-insensitively; hosts and paths are not case
// sensitive on the sites we drive.
func URLContains(substr string) Condition {
	return func(ctx context.Context, d output.DriverPort) (bool, error) {
		u, err := d.CurrentURL(ctx)
		if err != nil {
			return false, err
		}
		return strings.Contains(strings.ToLower(u), strings.ToLower(substr)), nil
	}
}

func Exists(locator entity.Locator) Condition {
	return func(ctx context.Context, d output.DriverPort) (bool, error) {
		els, err := d.FindElements(ctx, locator)
		return len(els) > 0, err
	}
}

func VisibleExists(locator entity.Locator) Condition {
	return func(ctx context.Context, d output.DriverPort) (bool, error) {
		els, err := d.FindElements(ctx, locator)
		if err != nil {
			return false, err
		}
		for _, el := range els {
			if ok, err := Visible(ctx, d, el); err == nil && ok {
				return true, nil
			}
		}
		return false, nil
	}
}

func AnyOf(conds ...Condition) Condition {
	return func(ctx context.Context, d output.DriverPort) (bool, error) {
		var lastErr error
		for _, c := range conds {
			ok, err := c(ctx, d)
			if err != nil {
				lastErr = err
				continue
			}
			if ok {
				return true, nil
			}
		}
		return false, lastErr
	}
}

func AllOf(conds ...Condition) Condition {
	return func(ctx context.Context, d output.DriverPort) (bool, error) {
		for _, c := range conds {
			ok, err := c(ctx, d)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

func Not(cond Condition) Condition {
	return func(ctx context.Context, d output.DriverPort) (bool, error) {
		ok, err := cond(ctx, d)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}

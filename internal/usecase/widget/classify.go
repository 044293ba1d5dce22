package widget

import (
	"context"
	"fmt"
	"strings"

	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"
)

// Classify inspects a resolved control. The result is only valid for this
// handle; the same locator may render as a different widget after a reload.
func Classify(ctx context.Context, d output.DriverPort, el entity.ElementHandle, cfg Config) (entity.WidgetKind, string, error) {
	state, err := d.Inspect(ctx, el)
	if err != nil {
		return entity.WidgetUnknown, "", fmt.Errorf("inspect %s: %w", el.Locator, err)
	}

	tag := strings.ToLower(state.Tag)
	if tag != "select" {
		return entity.WidgetUnknown, tag, nil
	}

	enhanced, err := hasPopupMarker(ctx, d, el, cfg)
	if err != nil {
		return entity.WidgetUnknown, tag, err
	}
	if enhanced {
		return entity.WidgetPopupSelect, tag, nil
	}
	return entity.WidgetNativeSelect, tag, nil
}

func hasPopupMarker(ctx context.Context, d output.DriverPort, el entity.ElementHandle, cfg Config) (bool, error) {
	class, _, err := d.ReadAttribute(ctx, el, "class")
	if err != nil {
		return false, fmt.Errorf("read class of %s: %w", el.Locator, err)
	}
	for _, c := range strings.Fields(class) {
		if c == cfg.PopupMarkerClass {
			return true, nil
		}
	}

	if cfg.PopupMarkerAttr == "" {
		return false, nil
	}
	_, ok, err := d.ReadAttribute(ctx, el, cfg.PopupMarkerAttr)
	if err != nil {
		return false, fmt.Errorf("read %s of %s: %w", cfg.PopupMarkerAttr, el.Locator, err)
	}
	return ok, nil
}

// Package widget selects options in filter controls regardless of whether the
// page renders them as native <select> elements or as select2 popups.
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"
	"browser-journey/internal/usecase/resolver"
)

type Config struct {
	PopupMarkerClass string
	PopupMarkerAttr  string

	// PopupContainer is evaluated relative to the control.
	PopupContainer         entity.Locator
	PopupContainerFallback entity.Locator
	PopupOption            entity.Locator
	PopupLoading           entity.Locator

	// SettleInterval bounds the wait for popup rows to render.
	SettleInterval time.Duration
	ResolveTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		PopupMarkerClass:       "select2-hidden-accessible",
		PopupMarkerAttr:        "data-select2-id",
		PopupContainer:         entity.XPath("following-sibling::span[contains(concat(' ', normalize-space(@class), ' '), ' select2-container ')][1]//span[contains(concat(' ', normalize-space(@class), ' '), ' select2-selection ')]"),
		PopupContainerFallback: entity.CSS("span.select2-selection"),
		PopupOption:            entity.CSS("li.select2-results__option"),
		PopupLoading:           entity.CSS("li.loading-results"),
		SettleInterval:         2 * time.Second,
	}
}

type Adapter struct {
	driver   output.DriverPort
	resolver *resolver.Resolver
	logger   output.LoggerPort
	cfg      Config
}

func New(driver output.DriverPort, res *resolver.Resolver, logger output.LoggerPort, cfg Config) *Adapter {
	def := DefaultConfig()
	if cfg.SettleInterval <= 0 {
		cfg.SettleInterval = def.SettleInterval
	}
	if cfg.PopupOption.IsZero() {
		cfg.PopupOption = def.PopupOption
	}
	if cfg.PopupMarkerClass == "" {
		cfg.PopupMarkerClass = def.PopupMarkerClass
	}
	return &Adapter{
		driver:   driver,
		resolver: res,
		logger:   logger.Named("widget"),
		cfg:      cfg,
	}
}

// SelectOption resolves control, works out what kind of widget it is right
// now, and picks the option best matching desired. The outcome lists every
// candidate considered, also on failure.
func (a *Adapter) SelectOption(ctx context.Context, control entity.Locator, desired string) (entity.SelectionOutcome, error) {
	el, err := a.resolver.Resolve(ctx, control, resolver.Present, a.cfg.ResolveTimeout)
	if err != nil {
		return entity.SelectionOutcome{Status: entity.SelectionUnresolved, Kind: entity.WidgetUnknown}, err
	}

	kind, tag, err := Classify(ctx, a.driver, el, a.cfg)
	if err != nil {
		return entity.SelectionOutcome{Status: entity.SelectionUnresolved, Kind: entity.WidgetUnknown}, err
	}

	log := a.logger.WithFields(map[string]any{"control": control.String(), "kind": string(kind), "desired": desired})
	log.Debug("Classified control", "tag", tag)

	switch kind {
	case entity.WidgetNativeSelect:
		return a.selectNative(ctx, log, el, desired)
	case entity.WidgetPopupSelect:
		return a.selectPopup(ctx, log, el, desired)
	default:
		log.Warn("Control is not selectable", "tag", tag)
		return entity.SelectionOutcome{Status: entity.SelectionUnsupported, Kind: kind},
			&entity.UnsupportedControlError{Control: control, Tag: tag}
	}
}

// Options lists a control's choices without selecting anything. Popups are
// opened and closed again to read them.
func (a *Adapter) Options(ctx context.Context, control entity.Locator) (entity.WidgetKind, []string, error) {
	el, err := a.resolver.Resolve(ctx, control, resolver.Present, a.cfg.ResolveTimeout)
	if err != nil {
		return entity.WidgetUnknown, nil, err
	}
	kind, tag, err := Classify(ctx, a.driver, el, a.cfg)
	if err != nil {
		return kind, nil, err
	}

	switch kind {
	case entity.WidgetNativeSelect:
		texts, _, err := a.nativeOptions(ctx, el)
		return kind, texts, err
	case entity.WidgetPopupSelect:
		container, err := a.openPopup(ctx, el)
		if err != nil {
			return kind, nil, err
		}
		texts, _, err := a.popupRows(ctx)
		a.closePopup(ctx, a.logger, container)
		return kind, texts, err
	default:
		return kind, nil, &entity.UnsupportedControlError{Control: control, Tag: tag}
	}
}

func (a *Adapter) selectNative(ctx context.Context, log output.LoggerPort, el entity.ElementHandle, desired string) (entity.SelectionOutcome, error) {
	out := entity.SelectionOutcome{Kind: entity.WidgetNativeSelect}

	texts, _, err := a.nativeOptions(ctx, el)
	if err != nil {
		out.Status = entity.SelectionUnresolved
		return out, err
	}
	out.Candidates = texts

	idx, match, ok := Match(texts, desired)
	if !ok {
		log.Info("Option not found", "candidates", texts)
		out.Status = entity.SelectionNotFound
		return out, &entity.OptionNotFoundError{Control: el.Locator, Desired: desired, Candidates: texts}
	}

	if err := a.driver.SetValue(ctx, el, texts[idx]); err != nil {
		out.Status = entity.SelectionUnresolved
		return out, fmt.Errorf("select %q in %s: %w", texts[idx], el.Locator, err)
	}

	log.Info("Option selected", "selected", texts[idx], "match", string(match))
	out.Status = entity.SelectionSelected
	out.Selected = texts[idx]
	out.Match = match
	return out, nil
}

func (a *Adapter) nativeOptions(ctx context.Context, el entity.ElementHandle) ([]string, []entity.ElementHandle, error) {
	opts, err := a.driver.FindWithin(ctx, el, entity.CSS("option"))
	if err != nil {
		return nil, nil, fmt.Errorf("list options of %s: %w", el.Locator, err)
	}

	texts := make([]string, 0, len(opts))
	handles := make([]entity.ElementHandle, 0, len(opts))
	for _, opt := range opts {
		state, err := a.driver.Inspect(ctx, opt)
		if err != nil {
			return nil, nil, fmt.Errorf("read option of %s: %w", el.Locator, err)
		}
		if text, ok := optionText(state); ok {
			texts = append(texts, text)
			handles = append(handles, opt)
		}
	}
	return texts, handles, nil
}

func (a *Adapter) selectPopup(ctx context.Context, log output.LoggerPort, el entity.ElementHandle, desired string) (entity.SelectionOutcome, error) {
	out := entity.SelectionOutcome{Kind: entity.WidgetPopupSelect}

	container, err := a.openPopup(ctx, el)
	if err != nil {
		out.Status = entity.SelectionUnresolved
		return out, err
	}

	texts, rows, err := a.popupRows(ctx)
	if err != nil {
		out.Status = entity.SelectionUnresolved
		return out, err
	}
	out.Candidates = texts

	idx, match, ok := Match(texts, desired)
	if !ok {
		log.Info("Option not found", "candidates", texts)
		a.closePopup(ctx, log, container)
		out.Status = entity.SelectionNotFound
		return out, &entity.OptionNotFoundError{Control: el.Locator, Desired: desired, Candidates: texts}
	}

	if err := a.driver.Click(ctx, rows[idx]); err != nil {
		out.Status = entity.SelectionUnresolved
		return out, fmt.Errorf("click option %q of %s: %w", texts[idx], el.Locator, err)
	}

	log.Info("Option selected", "selected", texts[idx], "match", string(match))
	out.Status = entity.SelectionSelected
	out.Selected = texts[idx]
	out.Match = match
	return out, nil
}

// openPopup clicks the widget container and waits for rows. There is no
// "fully open" signal in select2 markup, so readiness is "some row rendered
// and no loading placeholder". Rows appended after that first batch are
// missed; the wait is bounded by SettleInterval either way.
func (a *Adapter) openPopup(ctx context.Context, el entity.ElementHandle) (entity.ElementHandle, error) {
	container, err := a.findContainer(ctx, el)
	if err != nil {
		return entity.ElementHandle{}, err
	}
	if err := a.driver.Click(ctx, container); err != nil {
		return entity.ElementHandle{}, fmt.Errorf("open popup for %s: %w", el.Locator, err)
	}

	ready := resolver.Exists(a.cfg.PopupOption)
	if !a.cfg.PopupLoading.IsZero() {
		ready = resolver.AllOf(ready, resolver.Not(resolver.Exists(a.cfg.PopupLoading)))
	}
	if err := a.resolver.WaitUntil(ctx, "popup options rendered", ready, a.cfg.SettleInterval); err != nil {
		var te *entity.TimeoutError
		if !errors.As(err, &te) {
			return entity.ElementHandle{}, err
		}
		a.logger.Warn("Popup did not settle, reading whatever rendered", "control", el.Locator.String(), "error", err)
	}
	return container, nil
}

func (a *Adapter) findContainer(ctx context.Context, el entity.ElementHandle) (entity.ElementHandle, error) {
	if !a.cfg.PopupContainer.IsZero() {
		found, err := a.driver.FindWithin(ctx, el, a.cfg.PopupContainer)
		if err == nil && len(found) > 0 {
			return found[0], nil
		}
	}

	if id, ok, err := a.driver.ReadAttribute(ctx, el, "id"); err == nil && ok && id != "" {
		byLabel := entity.XPath(fmt.Sprintf("//span[@aria-labelledby='select2-%s-container']", id))
		if found, err := a.driver.FindElements(ctx, byLabel); err == nil && len(found) > 0 {
			return found[0], nil
		}
	}

	if !a.cfg.PopupContainerFallback.IsZero() {
		found, err := a.driver.FindElements(ctx, a.cfg.PopupContainerFallback)
		if err == nil && len(found) > 0 {
			a.logger.Debug("Using fallback popup container", "control", el.Locator.String())
			return found[0], nil
		}
	}

	return entity.ElementHandle{}, &entity.TimeoutError{Locator: a.cfg.PopupContainer, Condition: "popup container for " + el.Locator.String()}
}

// popupRows returns row texts and their handles, index-aligned.
func (a *Adapter) popupRows(ctx context.Context) ([]string, []entity.ElementHandle, error) {
	rows, err := a.driver.FindElements(ctx, a.cfg.PopupOption)
	if err != nil {
		return nil, nil, fmt.Errorf("list popup options: %w", err)
	}

	texts := make([]string, 0, len(rows))
	handles := make([]entity.ElementHandle, 0, len(rows))
	for _, row := range rows {
		state, err := a.driver.Inspect(ctx, row)
		if err != nil {
			return nil, nil, fmt.Errorf("read popup option: %w", err)
		}
		if text, ok := optionText(state); ok {
			texts = append(texts, text)
			handles = append(handles, row)
		}
	}
	return texts, handles, nil
}

// closePopup toggles the container so a dangling popup does not cover later
// targets.
func (a *Adapter) closePopup(ctx context.Context, log output.LoggerPort, container entity.ElementHandle) {
	if err := a.driver.Click(ctx, container); err != nil {
		log.Debug("Could not close popup", "error", err)
	}
}

// optionText is the candidate text of an option or popup row. Blank entries,
// such as a select2 placeholder option, are never candidates.
func optionText(state entity.ElementState) (string, bool) {
	text := strings.TrimSpace(state.Text)
	return text, text != ""
}

package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"browser-journey/internal/application/port/output"
	"browser-journey/internal/domain/entity"
	"browser-journey/internal/usecase/resolver"
)

// Session is what a step action sees of the browser. It never changes the
// active context; only the orchestrator does that between steps.
type Session struct {
	o   *Orchestrator
	run *run
	log output.LoggerPort
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	s.log.Info("Navigating", "url", url)
	if err := s.o.driver.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Click waits for the element to become clickable, then clicks it.
func (s *Session) Click(ctx context.Context, locator entity.Locator) error {
	el, err := s.o.resolver.ResolveClickable(ctx, locator, 0)
	if err != nil {
		return err
	}
	if err := s.o.driver.Click(ctx, el); err != nil {
		return fmt.Errorf("click %s: %w", locator, err)
	}
	s.log.Debug("Clicked", "locator", locator.String())
	return nil
}

func (s *Session) SelectOption(ctx context.Context, control entity.Locator, desired string) (entity.SelectionOutcome, error) {
	return s.o.widget.SelectOption(ctx, control, desired)
}

func (s *Session) Resolve(ctx context.Context, locator entity.Locator, pred resolver.Predicate) (entity.ElementHandle, error) {
	return s.o.resolver.Resolve(ctx, locator, pred, 0)
}

func (s *Session) ResolveAll(ctx context.Context, locator entity.Locator) ([]entity.ElementHandle, error) {
	return s.o.resolver.ResolveAll(ctx, locator, 0)
}

func (s *Session) IsPresent(ctx context.Context, locator entity.Locator, timeout time.Duration) bool {
	return s.o.resolver.IsPresent(ctx, locator, timeout)
}

// Text waits for a visible match and returns its trimmed text.
func (s *Session) Text(ctx context.Context, locator entity.Locator) (string, error) {
	el, err := s.o.resolver.Resolve(ctx, locator, resolver.Visible, 0)
	if err != nil {
		return "", err
	}
	return s.text(ctx, el)
}

// TextWithin returns the text of the first descendant of parent matching
// locator. It does not wait: parent is expected to be rendered already.
func (s *Session) TextWithin(ctx context.Context, parent entity.ElementHandle, locator entity.Locator) (string, error) {
	els, err := s.o.driver.FindWithin(ctx, parent, locator)
	if err != nil {
		return "", fmt.Errorf("find %s within %s: %w", locator, parent.Locator, err)
	}
	if len(els) == 0 {
		return "", fmt.Errorf("no %s within %s", locator, parent.Locator)
	}
	return s.text(ctx, els[0])
}

func (s *Session) text(ctx context.Context, el entity.ElementHandle) (string, error) {
	state, err := s.o.driver.Inspect(ctx, el)
	if err != nil {
		return "", fmt.Errorf("read text of %s: %w", el.Locator, err)
	}
	return strings.TrimSpace(state.Text), nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	return s.o.driver.CurrentURL(ctx)
}

func (s *Session) Title(ctx context.Context) (string, error) {
	return s.o.driver.PageTitle(ctx)
}

func (s *Session) ActiveContext() entity.ContextID {
	return s.run.active
}

func (s *Session) Logger() output.LoggerPort {
	return s.log
}

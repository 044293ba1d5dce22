package widget

import (
	"context"
	"testing"
	"time"

	"browser-journey/internal/domain/entity"
	"browser-journey/internal/infrastructure/logger"
	"browser-journey/internal/testutil/fakedriver"
	"browser-journey/internal/usecase/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const pageURL = "https://site.test/careers"

func setup(t *testing.T, build func() []*fakedriver.Element) (*Adapter, *fakedriver.Driver) {
	t.Helper()

	clk := fakedriver.NewAutoClock()
	d := fakedriver.New(clk)
	d.Pages[pageURL] = fakedriver.Page{Title: "Careers", Build: build}
	require.NoError(t, d.Navigate(context.Background(), pageURL))

	log := logger.FromZap(zaptest.NewLogger(t))
	res := resolver.New(d, log, resolver.Config{Interval: 100 * time.Millisecond, Timeout: time.Second}, resolver.WithClock(clk))
	cfg := DefaultConfig()
	cfg.SettleInterval = 500 * time.Millisecond
	return New(d, res, log, cfg), d
}

func option(text string) *fakedriver.Element {
	return fakedriver.El("option", nil).WithText(text)
}

func nativeSelect(id string, options ...string) *fakedriver.Element {
	sel := fakedriver.El("select", map[string]string{"id": id})
	for _, o := range options {
		sel.Children = append(sel.Children, option(o))
	}
	return sel
}

func TestSelectOption_Native(t *testing.T) {
	a, d := setup(t, func() []*fakedriver.Element {
		return []*fakedriver.Element{nativeSelect("filter-by-location", "All", "Istanbul, Turkey Region", "Istanbul, Turkiye")}
	})
	ctx := context.Background()
	control := entity.ID("filter-by-location")

	out, err := a.SelectOption(ctx, control, "Istanbul, Turkiye")
	require.NoError(t, err)
	assert.True(t, out.OK())
	assert.Equal(t, entity.WidgetNativeSelect, out.Kind)
	assert.Equal(t, "Istanbul, Turkiye", out.Selected)
	assert.Equal(t, entity.MatchExact, out.Match)
	assert.Equal(t, []string{"All", "Istanbul, Turkey Region", "Istanbul, Turkiye"}, out.Candidates)
	assert.Equal(t, "Istanbul, Turkiye", d.Value(control))
}

func TestSelectOption_Idempotent(t *testing.T) {
	a, d := setup(t, func() []*fakedriver.Element {
		return []*fakedriver.Element{nativeSelect("dept", "All", "Quality Assurance")}
	})
	ctx := context.Background()
	control := entity.ID("dept")

	first, err := a.SelectOption(ctx, control, "Quality Assurance")
	require.NoError(t, err)
	second, err := a.SelectOption(ctx, control, "Quality Assurance")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Quality Assurance", d.Value(control))
}

func TestSelectOption_NotFoundListsCandidates(t *testing.T) {
	a, d := setup(t, func() []*fakedriver.Element {
		return []*fakedriver.Element{nativeSelect("x", "A", "B")}
	})
	control := entity.ID("x")

	out, err := a.SelectOption(context.Background(), control, "Nonexistent")

	var nf *entity.OptionNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, []string{"A", "B"}, nf.Candidates)
	assert.Equal(t, "Nonexistent", nf.Desired)
	assert.Equal(t, entity.SelectionNotFound, out.Status)
	assert.Equal(t, []string{"A", "B"}, out.Candidates)
	assert.Empty(t, d.Value(control))
}

func TestSelectOption_UnsupportedControl(t *testing.T) {
	a, _ := setup(t, func() []*fakedriver.Element {
		return []*fakedriver.Element{fakedriver.El("input", map[string]string{"id": "q"})}
	})

	out, err := a.SelectOption(context.Background(), entity.ID("q"), "anything")

	var uc *entity.UnsupportedControlError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "input", uc.Tag)
	assert.Equal(t, entity.SelectionUnsupported, out.Status)
	assert.Equal(t, entity.WidgetUnknown, out.Kind)
}

func TestSelectOption_UnresolvedControl(t *testing.T) {
	a, _ := setup(t, func() []*fakedriver.Element { return nil })

	out, err := a.SelectOption(context.Background(), entity.ID("missing"), "A")

	var te *entity.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, entity.SelectionUnresolved, out.Status)
}

// popupPage renders a select2-enhanced control: the hidden <select>, the
// sibling container that opens the popup and an initially empty results list.
func popupPage(rows []string, rowDelay time.Duration) func() []*fakedriver.Element {
	return func() []*fakedriver.Element {
		sel := nativeSelect("filter-by-location", append([]string{"All"}, rows...)...)
		sel.Attrs["class"] = "select2-hidden-accessible"
		sel.Hidden = true

		results := fakedriver.El("ul", map[string]string{"class": "select2-results__options"})

		container := fakedriver.El("span", map[string]string{"class": "select2-selection select2-selection--single"}).
			WithText("All").
			WithXPath(DefaultConfig().PopupContainer.Expression)
		container.OnClick = func(d *fakedriver.Driver, tab *fakedriver.Tab) {
			if len(results.Children) > 0 {
				results.Children = nil
				return
			}
			for _, text := range append([]string{"All"}, rows...) {
				text := text
				li := fakedriver.El("li", map[string]string{"class": "select2-results__option"}).WithText(text)
				li.AppearAfter = d.Elapsed(tab) + rowDelay
				li.OnClick = func(*fakedriver.Driver, *fakedriver.Tab) {
					sel.Attrs["value"] = text
					container.Text = text
					results.Children = nil
				}
				results.Append(li)
			}
		}
		wrapper := fakedriver.El("span", map[string]string{"class": "select2 select2-container"}, container)

		return []*fakedriver.Element{
			fakedriver.El("div", nil, sel, wrapper),
			results,
		}
	}
}

func TestSelectOption_Popup(t *testing.T) {
	a, d := setup(t, popupPage([]string{"Istanbul, Turkey Region", "Istanbul, Turkiye"}, 300*time.Millisecond))
	control := entity.ID("filter-by-location")

	out, err := a.SelectOption(context.Background(), control, "Istanbul, Turkiye")
	require.NoError(t, err)

	assert.Equal(t, entity.WidgetPopupSelect, out.Kind)
	assert.Equal(t, entity.MatchExact, out.Match)
	assert.Equal(t, "Istanbul, Turkiye", out.Selected)
	assert.Equal(t, []string{"All", "Istanbul, Turkey Region", "Istanbul, Turkiye"}, out.Candidates)
	assert.Equal(t, "Istanbul, Turkiye", d.Value(control))
	assert.Equal(t, "All | Istanbul, Turkiye", d.ClickLog())
}

func TestSelectOption_PopupNotFoundClosesPopup(t *testing.T) {
	a, d := setup(t, popupPage([]string{"A", "B"}, 0))

	out, err := a.SelectOption(context.Background(), entity.ID("filter-by-location"), "Nonexistent")

	var nf *entity.OptionNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, []string{"All", "A", "B"}, nf.Candidates)
	assert.Equal(t, entity.WidgetPopupSelect, out.Kind)

	rows, err := d.FindElements(context.Background(), DefaultConfig().PopupOption)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSelectOption_PopupNeverSettles(t *testing.T) {
	// Rows arrive long after the settle interval: the adapter reads the empty
	// results list, reports no match and closes the popup again.
	a, d := setup(t, popupPage([]string{"Istanbul, Turkiye"}, 5*time.Second))

	out, err := a.SelectOption(context.Background(), entity.ID("filter-by-location"), "Istanbul, Turkiye")

	var nf *entity.OptionNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Empty(t, nf.Candidates)
	assert.Equal(t, entity.SelectionNotFound, out.Status)
	assert.Empty(t, out.Candidates)
	assert.Empty(t, d.Value(entity.ID("filter-by-location")))
	assert.Equal(t, "All | All", d.ClickLog())

	rows, err := d.FindElements(context.Background(), DefaultConfig().PopupOption)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSelectOption_BlankOptionsAreNotCandidates(t *testing.T) {
	a, _ := setup(t, func() []*fakedriver.Element {
		return []*fakedriver.Element{nativeSelect("x", "", "A", "  ", "B")}
	})

	out, err := a.SelectOption(context.Background(), entity.ID("x"), "Nonexistent")

	var nf *entity.OptionNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, []string{"A", "B"}, nf.Candidates)
	assert.Equal(t, []string{"A", "B"}, out.Candidates)
}

func TestSelectOption_ClassifiesPerCall(t *testing.T) {
	enhanced := false
	a, d := setup(t, func() []*fakedriver.Element {
		if enhanced {
			return popupPage([]string{"Berlin"}, 0)()
		}
		return []*fakedriver.Element{nativeSelect("filter-by-location", "All", "Berlin")}
	})
	ctx := context.Background()
	control := entity.ID("filter-by-location")

	out, err := a.SelectOption(ctx, control, "Berlin")
	require.NoError(t, err)
	assert.Equal(t, entity.WidgetNativeSelect, out.Kind)

	enhanced = true
	require.NoError(t, d.Navigate(ctx, pageURL))

	out, err = a.SelectOption(ctx, control, "Berlin")
	require.NoError(t, err)
	assert.Equal(t, entity.WidgetPopupSelect, out.Kind)
}

func TestOptions(t *testing.T) {
	a, _ := setup(t, func() []*fakedriver.Element {
		return []*fakedriver.Element{nativeSelect("dept", "All", "Quality Assurance", "Sales")}
	})

	kind, opts, err := a.Options(context.Background(), entity.ID("dept"))
	require.NoError(t, err)
	assert.Equal(t, entity.WidgetNativeSelect, kind)
	assert.Equal(t, []string{"All", "Quality Assurance", "Sales"}, opts)
}

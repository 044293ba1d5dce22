package journeys

import (
	"context"
	"testing"
	"time"

	"browser-journey/internal/domain/entity"
	"browser-journey/internal/infrastructure/logger"
	"browser-journey/internal/testutil/fakedriver"
	"browser-journey/internal/usecase/orchestrator"
	"browser-journey/internal/usecase/resolver"
	"browser-journey/internal/usecase/widget"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	base      = "https://www.site.test/"
	careers   = base + "careers/"
	qaCareers = base + "careers/quality-assurance/"
	positions = base + "careers/open-positions/"
	lever     = "https://jobs.lever.co/site/1234"
)

type fixture struct {
	departments []string
	jobLocation string
}

func (f fixture) pages() map[string]fakedriver.Page {
	text := func(tag, s string, x entity.Locator) *fakedriver.Element {
		return fakedriver.El(tag, nil).WithText(s).WithXPath(x.Expression)
	}
	options := func(id string, texts ...string) *fakedriver.Element {
		sel := fakedriver.El("select", map[string]string{"id": id})
		for _, t := range texts {
			sel.Children = append(sel.Children, fakedriver.El("option", nil).WithText(t))
		}
		return sel
	}

	return map[string]fakedriver.Page{
		base: {
			Title: "#1 Leader in Individualized, Cross-Channel CX - Insider",
			Build: func() []*fakedriver.Element {
				menu := fakedriver.El("div", map[string]string{"class": "dropdown-menu"})
				company := text("a", "Company", CompanyMenu)
				company.OnClick = func(d *fakedriver.Driver, tab *fakedriver.Tab) {
					link := fakedriver.El("a", map[string]string{"href": careers}).WithText("Careers").WithXPath(CareersLink.Expression)
					link.AppearAfter = d.Elapsed(tab) + 150*time.Millisecond
					menu.Append(link)
				}
				return []*fakedriver.Element{fakedriver.El("nav", nil, company, menu)}
			},
		},
		careers: {
			Title: "Insider Careers",
			Build: func() []*fakedriver.Element {
				return []*fakedriver.Element{
					text("h3", "Our Locations", LocationsBlock),
					text("h2", "Life at Insider", LifeBlock),
				}
			},
		},
		qaCareers: {
			Title: "Quality Assurance Careers",
			Build: func() []*fakedriver.Element {
				return []*fakedriver.Element{
					fakedriver.El("a", map[string]string{"href": positions}).WithText("See all QA jobs").WithXPath(SeeAllQAJobs.Expression),
				}
			},
		},
		positions: {
			Title: "Open Positions",
			Build: func() []*fakedriver.Element {
				job := fakedriver.El("div", map[string]string{"class": "position-list-item"},
					fakedriver.El("p", map[string]string{"class": "position-title"}).WithText("Senior Software QA Engineer"),
					fakedriver.El("span", map[string]string{"class": "position-department"}).WithText("Quality Assurance"),
					fakedriver.El("div", map[string]string{"class": "position-location"}).WithText(f.jobLocation),
					fakedriver.El("a", map[string]string{"class": "btn btn-view-role", "href": lever, "target": "_blank"}).WithText("View Role"),
				).WithXPath(AnyPosition.Expression)
				job.AppearAfter = 400 * time.Millisecond

				return []*fakedriver.Element{
					options("filter-by-location", "All", "Istanbul, Turkey Region", "Istanbul, Turkiye"),
					options("filter-by-department", f.departments...),
					job,
				}
			},
		},
		lever: {Title: "Insider. - Senior Software QA Engineer"},
	}
}

func defaultFixture() fixture {
	return fixture{
		departments: []string{"All", "Quality Assurance"},
		jobLocation: "Istanbul, Turkiye",
	}
}

func setup(t *testing.T, f fixture) (*orchestrator.Orchestrator, *fakedriver.Driver, Site) {
	t.Helper()

	clk := fakedriver.NewAutoClock()
	d := fakedriver.New(clk)
	d.Pages = f.pages()

	log := logger.FromZap(zaptest.NewLogger(t))
	res := resolver.New(d, log, resolver.Config{Interval: 100 * time.Millisecond, Timeout: 2 * time.Second}, resolver.WithClock(clk))
	wid := widget.New(d, res, log, widget.DefaultConfig())
	o := orchestrator.New(d, res, wid, nil, log, orchestrator.DefaultConfig())

	site := DefaultSite()
	site.BaseURL = base
	return o, d, site
}

func TestHomepageJourney(t *testing.T) {
	o, _, site := setup(t, defaultFixture())

	res, err := o.Run(context.Background(), HomepageJourney(site))
	require.NoError(t, err)
	assert.True(t, res.Passed())
	assert.Equal(t, base, res.FinalURL)
}

func TestCareersNavigationJourney(t *testing.T) {
	o, _, site := setup(t, defaultFixture())

	res, err := o.Run(context.Background(), CareersNavigationJourney(site))
	require.NoError(t, err)

	assert.Equal(t, entity.StateDone, res.State)
	assert.Equal(t, careers, res.FinalURL)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "teams block present", res.Diagnostics[0].Step)
}

func TestQAJobsJourney_FiltersApplied(t *testing.T) {
	o, d, site := setup(t, defaultFixture())

	res, err := o.Run(context.Background(), QAJobsJourney(site))
	require.NoError(t, err)

	assert.Equal(t, entity.StateDone, res.State)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, "Istanbul, Turkiye", d.Value(LocationFilter))
	assert.Equal(t, "Quality Assurance", d.Value(DepartmentFilter))
}

func TestQAJobsJourney_MissingDepartmentIsSoft(t *testing.T) {
	f := defaultFixture()
	f.departments = []string{"All", "Sales"}
	o, _, site := setup(t, f)

	res, err := o.Run(context.Background(), QAJobsJourney(site))
	require.NoError(t, err)

	assert.Equal(t, entity.StateDone, res.State)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "filter by department", res.Diagnostics[0].Step)
	assert.Equal(t, []string{"All", "Sales"}, res.Diagnostics[0].Candidates)
}

func TestQAJobsJourney_JobOutsideLocationFails(t *testing.T) {
	f := defaultFixture()
	f.jobLocation = "Berlin, Germany"
	o, _, site := setup(t, f)

	res, err := o.Run(context.Background(), QAJobsJourney(site))

	var jf *entity.JourneyFailedError
	require.ErrorAs(t, err, &jf)
	assert.Equal(t, "jobs match filters", jf.Step)
	assert.ErrorIs(t, err, ErrJobMismatch)
	assert.Equal(t, entity.StateFailed, res.State)
}

func TestViewRoleJourney(t *testing.T) {
	o, d, site := setup(t, defaultFixture())
	d.SpawnDelay = 800 * time.Millisecond

	res, err := o.Run(context.Background(), ViewRoleJourney(site))
	require.NoError(t, err)

	assert.Equal(t, entity.StateDone, res.State)
	assert.Equal(t, lever, res.FinalURL)
	assert.Equal(t, entity.ContextID("tab-2"), res.ActiveContext.ID)
}

func TestCatalog(t *testing.T) {
	var names []string
	for _, nf := range Catalog(DefaultSite()) {
		names = append(names, nf.Name)
		j := nf.Factory()
		assert.Equal(t, nf.Name, j.Name)
		assert.NoError(t, j.Validate())
	}
	assert.Equal(t, []string{Homepage, CareersNavigation, QAJobs, ViewRoleRedirect}, names)
}

func TestSite(t *testing.T) {
	site := Site{BaseURL: "https://www.useinsider.com/"}

	u, err := site.URL("/careers/quality-assurance/")
	require.NoError(t, err)
	assert.Equal(t, "https://www.useinsider.com/careers/quality-assurance/", u)
	assert.Equal(t, "useinsider.com", site.Host())
}

package journeys

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"browser-journey/internal/domain/entity"
	"browser-journey/internal/usecase/orchestrator"
	"browser-journey/internal/usecase/resolver"
)

const (
	Homepage          = "homepage"
	CareersNavigation = "careers-navigation"
	QAJobs            = "qa-jobs"
	ViewRoleRedirect  = "view-role"

	blockProbe = 2 * time.Second
	emptyProbe = time.Second
)

var ErrJobMismatch = errors.New("job does not match applied filter")

// Factory builds a fresh journey. Journeys carry per-run state in closures,
// so each run needs its own instance.
type Factory func() orchestrator.Journey

// Catalog lists every journey for site in run order.
func Catalog(site Site) []NamedFactory {
	return []NamedFactory{
		{Homepage, func() orchestrator.Journey { return HomepageJourney(site) }},
		{CareersNavigation, func() orchestrator.Journey { return CareersNavigationJourney(site) }},
		{QAJobs, func() orchestrator.Journey { return QAJobsJourney(site) }},
		{ViewRoleRedirect, func() orchestrator.Journey { return ViewRoleJourney(site) }},
	}
}

type NamedFactory struct {
	Name    string
	Factory Factory
}

func HomepageJourney(site Site) orchestrator.Journey {
	return orchestrator.Journey{
		Name:        Homepage,
		Description: "home page opens on the expected host",
		Steps: []orchestrator.Step{
			openPath(site, "open home page", "/", resolver.Exists(CompanyMenu)),
			verify("title mentions brand", resolver.TitleContains(site.Brand)),
			verify("on site host", resolver.URLContains(site.Host())),
		},
	}
}

func CareersNavigationJourney(site Site) orchestrator.Journey {
	steps := []orchestrator.Step{
		openPath(site, "open home page", "/", resolver.Exists(CompanyMenu)),
		click("open company menu", CompanyMenu, nil),
		click("open careers", CareersLink, resolver.URLContains("careers")),
		verify("careers blocks rendered", CareersBlocksPresent()),
	}

	blocks := []struct {
		name    string
		locator entity.Locator
	}{
		{"locations block present", LocationsBlock},
		{"teams block present", TeamsBlock},
		{"life at company block present", LifeBlock},
	}
	for _, b := range blocks {
		step := verify(b.name, resolver.Exists(b.locator))
		step.Soft = true
		step.Timeout = blockProbe
		steps = append(steps, step)
	}

	return orchestrator.Journey{
		Name:        CareersNavigation,
		Description: "company menu leads to the careers page and its blocks",
		Steps:       steps,
	}
}

func QAJobsJourney(site Site) orchestrator.Journey {
	return orchestrator.Journey{
		Name:        QAJobs,
		Description: "QA openings can be listed and filtered",
		Steps:       qaJobsSteps(site, &filters{}),
	}
}

func ViewRoleJourney(site Site) orchestrator.Journey {
	steps := qaJobsSteps(site, &filters{})

	open := click("view first role", ViewRole, nil)
	open.OpensContext = true
	steps = append(steps,
		open,
		verify("application form on lever", resolver.URLContains("lever")),
	)

	return orchestrator.Journey{
		Name:        ViewRoleRedirect,
		Description: "view role opens the application form in a new tab",
		Steps:       steps,
	}
}

// filters remembers which filter values the page actually accepted, so the
// per-job check only asserts what was applied.
type filters struct {
	location   string
	department string
}

func qaJobsSteps(site Site, applied *filters) []orchestrator.Step {
	return []orchestrator.Step{
		openPath(site, "open QA careers page", "/careers/quality-assurance/", resolver.URLContains("quality-assurance")),
		click("see all QA jobs", SeeAllQAJobs, JobsLoaded()),
		filter("filter by location", LocationFilter, site.Location, &applied.location),
		filter("filter by department", DepartmentFilter, site.Department, &applied.department),
		verify("job list present", JobsLoaded()),
		{
			Name: "jobs match filters",
			Kind: entity.StepVerify,
			Action: func(ctx context.Context, s *orchestrator.Session) error {
				return checkJobs(ctx, s, *applied)
			},
		},
	}
}

func checkJobs(ctx context.Context, s *orchestrator.Session, applied filters) error {
	log := s.Logger()
	if applied.location == "" && applied.department == "" {
		log.Info("No filter applied, skipping per-job check")
		return nil
	}
	if !s.IsPresent(ctx, JobItem, emptyProbe) {
		log.Info("No positions listed for the applied filters")
		return nil
	}

	jobs, err := s.ResolveAll(ctx, JobItem)
	if err != nil {
		return err
	}
	for i, job := range jobs {
		if applied.department != "" {
			if err := expectWithin(ctx, s, job, JobDepartment, applied.department); err != nil {
				return fmt.Errorf("job %d: %w", i+1, err)
			}
		}
		if applied.location != "" {
			if err := expectWithin(ctx, s, job, JobLocation, applied.location); err != nil {
				return fmt.Errorf("job %d: %w", i+1, err)
			}
		}
	}
	log.Info("All jobs match filters", "jobs", len(jobs))
	return nil
}

func expectWithin(ctx context.Context, s *orchestrator.Session, job entity.ElementHandle, field entity.Locator, want string) error {
	got, err := s.TextWithin(ctx, job, field)
	if err != nil {
		return err
	}
	if !strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
		return fmt.Errorf("%w: %s is %q, want %q", ErrJobMismatch, field, got, want)
	}
	return nil
}

func openPath(site Site, name, path string, post resolver.Condition) orchestrator.Step {
	return orchestrator.Step{
		Name: name,
		Kind: entity.StepNavigate,
		Action: func(ctx context.Context, s *orchestrator.Session) error {
			target, err := site.URL(path)
			if err != nil {
				return err
			}
			return s.Navigate(ctx, target)
		},
		Postcondition: post,
	}
}

func click(name string, locator entity.Locator, post resolver.Condition) orchestrator.Step {
	return orchestrator.Step{
		Name:          name,
		Kind:          entity.StepInteract,
		Action:        func(ctx context.Context, s *orchestrator.Session) error { return s.Click(ctx, locator) },
		Postcondition: post,
	}
}

func verify(name string, cond resolver.Condition) orchestrator.Step {
	return orchestrator.Step{Name: name, Kind: entity.StepVerify, Postcondition: cond}
}

// filter is soft: a missing option or an unexpected widget is recorded and
// the journey goes on with whatever the page shows.
func filter(name string, control entity.Locator, desired string, applied *string) orchestrator.Step {
	return orchestrator.Step{
		Name: name,
		Kind: entity.StepInteract,
		Soft: true,
		Action: func(ctx context.Context, s *orchestrator.Session) error {
			out, err := s.SelectOption(ctx, control, desired)
			if err != nil {
				return err
			}
			*applied = out.Selected
			return nil
		},
		Postcondition: JobsLoaded(),
	}
}

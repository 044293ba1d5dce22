// Package journeys holds the end-to-end scenarios run against the careers
// site, expressed as orchestrator steps.
package journeys

import (
	"fmt"
	"net/url"
	"strings"

	"browser-journey/internal/domain/entity"
	"browser-journey/internal/usecase/resolver"
)

// Site describes the deployment under test. Everything the journeys assert
// about content comes from here so a local fixture can stand in for it.
type Site struct {
	BaseURL    string
	Brand      string
	Location   string
	Department string
}

func DefaultSite() Site {
	return Site{
		BaseURL:    "https://useinsider.com/",
		Brand:      "Insider",
		Location:   "Istanbul, Turkiye",
		Department: "Quality Assurance",
	}
}

// URL resolves path against the base URL.
func (s Site) URL(path string) (string, error) {
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", s.BaseURL, err)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path %q: %w", path, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (s Site) Host() string {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

var (
	CompanyMenu = entity.XPath("//a[contains(text(),'Company')]")
	CareersLink = entity.XPath("//a[contains(text(),'Careers')]")

	LocationsBlock = entity.XPath("//*[contains(text(),'Our Locations')]")
	TeamsBlock     = entity.XPath("//*[contains(text(),'Find your calling')]")
	LifeBlock      = entity.XPath("//*[contains(text(),'Life at Insider')]")

	SeeAllQAJobs     = entity.XPath("//a[contains(text(),'See all QA jobs')]")
	LocationFilter   = entity.ID("filter-by-location")
	DepartmentFilter = entity.ID("filter-by-department")

	AnyPosition   = entity.XPath("//div[contains(@class,'position')]")
	NoPositions   = entity.XPath("//p[contains(text(),'No positions available')]")
	JobItem       = entity.CSS("div.position-list-item")
	JobDepartment = entity.CSS(".position-department")
	JobLocation   = entity.CSS(".position-location")
	ViewRole      = entity.ClassName("btn-view-role")
)

// JobsLoaded holds once the job list has been rendered by script, either with
// positions or with the empty-state message.
func JobsLoaded() resolver.Condition {
	return resolver.AnyOf(
		resolver.Exists(AnyPosition),
		resolver.VisibleExists(NoPositions),
	)
}

// CareersBlocksPresent holds when at least one of the careers landing blocks
// is rendered; their copy changes often enough that requiring all is flaky.
func CareersBlocksPresent() resolver.Condition {
	return resolver.AnyOf(
		resolver.Exists(LocationsBlock),
		resolver.Exists(TeamsBlock),
		resolver.Exists(LifeBlock),
	)
}

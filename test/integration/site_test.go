package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const homeHTML = `<!DOCTYPE html>
<html>
<head><title>Insider - Individualized Experiences</title></head>
<body>
	<nav>
		<a href="#" id="company" onclick="document.getElementById('menu').style.display='block'; return false;">Company</a>
		<div id="menu" style="display:none"><a href="/careers/">Careers</a></div>
	</nav>
</body>
</html>`

const careersHTML = `<!DOCTYPE html>
<html>
<head><title>Insider Careers</title></head>
<body>
	<section><h3>Our Locations</h3></section>
	<section><h2>Life at Insider</h2></section>
</body>
</html>`

const qaHTML = `<!DOCTYPE html>
<html>
<head><title>Quality Assurance Careers</title></head>
<body><a href="/careers/open-positions/">See all QA jobs</a></body>
</html>`

// positionsTemplate renders the job list from script after a short delay,
// like the real page does, and re-renders it on every filter change.
const positionsTemplate = `<!DOCTYPE html>
<html>
<head><title>Open Positions</title></head>
<body>
	<select id="filter-by-location">%s</select>
	<select id="filter-by-department">%s</select>
	<div id="jobs"></div>
	<script>
	const jobs = [
		{title: "Senior QA Engineer", department: "Quality Assurance", location: "Istanbul, Turkiye"},
		{title: "QA Automation Engineer", department: "Quality Assurance", location: "Istanbul, Turkiye"},
		{title: "Test Lead", department: "Quality Assurance", location: "London, United Kingdom"},
	];
	function render() {
		const loc = document.getElementById('filter-by-location').value;
		const dep = document.getElementById('filter-by-department').value;
		const list = jobs.filter(j => (loc === 'All' || j.location === loc) && (dep === 'All' || j.department === dep));
		const root = document.getElementById('jobs');
		if (list.length === 0) {
			root.innerHTML = '<p>No positions available</p>';
			return;
		}
		root.innerHTML = list.map(j =>
			'<div class="position-list-item">' +
			'<p class="position-title">' + j.title + '</p>' +
			'<span class="position-department">' + j.department + '</span>' +
			'<div class="position-location">' + j.location + '</div>' +
			'<a class="btn btn-view-role" target="_blank" href="/lever/apply">View Role</a>' +
			'</div>').join('');
	}
	document.getElementById('filter-by-location').addEventListener('change', render);
	document.getElementById('filter-by-department').addEventListener('change', render);
	setTimeout(render, 200);
	</script>
</body>
</html>`

const leverHTML = `<!DOCTYPE html>
<html>
<head><title>Senior QA Engineer - Apply</title></head>
<body><form><input name="name" /></form></body>
</html>`

type siteOptions struct {
	departments []string
}

// newSite serves a small offline copy of the careers site.
func newSite(t *testing.T, opts siteOptions) *httptest.Server {
	t.Helper()

	locations := options("All", "Istanbul, Turkiye", "London, United Kingdom")
	departments := options(append([]string{"All"}, opts.departments...)...)

	pages := map[string]string{
		"/":                           homeHTML,
		"/careers/":                   careersHTML,
		"/careers/quality-assurance/": qaHTML,
		"/careers/open-positions/":    fmt.Sprintf(positionsTemplate, locations, departments),
		"/lever/apply":                leverHTML,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	t.Cleanup(server.Close)
	return server
}

func options(texts ...string) string {
	var b strings.Builder
	for _, text := range texts {
		fmt.Fprintf(&b, "<option value=%q>%s</option>", text, text)
	}
	return b.String()
}

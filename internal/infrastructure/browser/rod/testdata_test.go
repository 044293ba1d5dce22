package rod

// HTML fixtures served by httptest in the adapter tests.
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1 id="greeting" class="headline big">Hello World</h1>
	<ul id="list"><li class="item">One</li><li class="item">Two</li></ul>
</body>
</html>`

	SelectHTML = `<!DOCTYPE html>
<html>
<body>
	<select id="filter-by-location">
		<option>All</option>
		<option>Istanbul, Turkey Region</option>
		<option>Istanbul, Turkiye</option>
	</select>
	<input id="q" type="text" />
</body>
</html>`

	CoveredHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="under" style="position:absolute;top:10px;left:10px">Under</button>
	<div id="overlay" style="position:absolute;top:0;left:0;width:300px;height:300px;background:#fff"></div>
	<button id="off" disabled>Off</button>
	<button id="hidden" style="display:none">Hidden</button>
</body>
</html>`

	SiblingHTML = `<!DOCTYPE html>
<html>
<body>
	<div>
		<select id="control" class="select2-hidden-accessible"><option>A</option></select>
		<span class="select2 select2-container"><span class="selection"><span class="select2-selection">A</span></span></span>
	</div>
</body>
</html>`

	NewTabHTML = `<!DOCTYPE html>
<html>
<head><title>Opener</title></head>
<body>
	<a id="open" href="/target" target="_blank">Open</a>
</body>
</html>`
)

package api

import "net/http"

const overtHomeHTML = `<html>
<head><title>Email Tracking Server</title></head>
<body>
	<h1>Email Tracking Server</h1>
	<p>This server tracks email opens using tracking pixels.</p>
	<h2>Endpoints:</h2>
	<ul>
		<li><strong>Tracking Pixel:</strong> /track/&lt;tracking_id&gt;</li>
		<li><strong>API Status:</strong> /api/tracking/&lt;tracking_id&gt;</li>
		<li><strong>All Data:</strong> /api/tracking</li>
	</ul>
	<p>Embed the pixel in outbound mail as:</p>
	<code>https://your-app.example.com/track/{tracking_id}</code>
</body>
</html>`

const stealthHomeHTML = `<html>
<head>
	<title>Welcome to Our Services</title>
	<meta name="description" content="Professional business solutions and consulting services">
	<style>
		body { font-family: Arial, sans-serif; margin: 40px; background: #f5f5f5; }
		.container { max-width: 800px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
		h1 { color: #2c3e50; }
		.service { margin: 20px 0; padding: 15px; border-left: 4px solid #3498db; background: #f8f9fa; }
	</style>
</head>
<body>
	<div class="container">
		<h1>Welcome to Our Business Services</h1>
		<p>We provide professional consulting and business solutions to help your company grow.</p>
		<div class="service">
			<h3>Business Strategy</h3>
			<p>Comprehensive business planning and strategic consulting services.</p>
		</div>
		<div class="service">
			<h3>Digital Marketing</h3>
			<p>Modern marketing solutions to increase your online presence.</p>
		</div>
		<div class="service">
			<h3>Technology Consulting</h3>
			<p>Expert advice on technology implementation and optimization.</p>
		</div>
		<p><strong>Contact us:</strong> info@businessservices.com</p>
	</div>
</body>
</html>`

// HomeHandler serves the landing page. The stealth variant makes the host
// look like an ordinary small-business site to anyone poking at the domain
// a beacon URL points to.
func HomeHandler(stealth bool) http.HandlerFunc {
	page := overtHomeHTML
	if stealth {
		page = stealthHomeHTML
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}
}

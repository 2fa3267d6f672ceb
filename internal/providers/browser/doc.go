// Package browser is a text-mode web browser app.
//
// Pages are fetched with resty through a circuit breaker, transcoded to UTF-8
// and reduced with goquery to a title, readable text blocks and a list of
// followable links. Navigation runs as a command; only the newest navigation
// may land, and hiding the window cancels the one in flight.
package browser

// Package resilience guards calls to unreliable dependencies.
//
// The Browser app routes page fetches through a Breaker so a host that keeps
// timing out is refused quickly instead of stalling every navigation. A
// cancelled call, such as a fetch abandoned when its window closed, does not
// count against the breaker.
package resilience

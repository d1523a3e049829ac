// Package route names the screens of the application and how controllers
// move between them.
package route

import "sync"

// Route is a screen.
type Route string

const (
	Login     Route = "login"
	Register  Route = "register"
	Dashboard Route = "dashboard"
)

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(to Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to Route)

// Navigate calls f(to).
func (f NavigatorFunc) Navigate(to Route) { f(to) }

// Recorder is a Navigator that remembers every navigation.
type Recorder struct {
	mu     sync.Mutex
	routes []Route
}

// Navigate records to.
func (r *Recorder) Navigate(to Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, to)
}

// Last returns the most recent route, or "" if none.
func (r *Recorder) Last() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

// Routes returns all recorded routes in order.
func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}

package ui

import "time"

// Routes the client navigates to.
const (
	RouteHome         = "/"
	RouteLogin        = "/login"
	RouteRegister     = "/register"
	RouteOrderSuccess = "/order-success"
)

// Navigator is the window.location stand-in. NavigateAfter exists for
// the "toast first, move later" flows (registration success, the
// auth-required bounce to login, order confirmation).
type Navigator interface {
	Navigate(route string)
	NavigateAfter(route string, delay time.Duration)
}

// FuncNavigator adapts a plain function into a Navigator. The delayed
// variant blocks for the delay before navigating; front ends that need
// non-blocking behavior wrap Navigate themselves.
type FuncNavigator func(route string)

func (f FuncNavigator) Navigate(route string) {
	f(route)
}

func (f FuncNavigator) NavigateAfter(route string, delay time.Duration) {
	time.Sleep(delay)
	f(route)
}

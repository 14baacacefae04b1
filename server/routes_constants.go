package server

// Route path constants for the loopback callback server
const (
	RouteIndex    = "/"
	RouteCallback = "/callback"
)

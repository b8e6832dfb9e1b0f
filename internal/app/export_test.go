package app

import "net/http"

// HealthMux exposes the health check routes to the external tests.
func (a *App) HealthMux() *http.ServeMux { return a.healthMux() }

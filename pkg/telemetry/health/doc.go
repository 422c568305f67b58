// Package health provides liveness and readiness checks.
//
// The liveness probe (/health) answers as long as the process serves HTTP.
// The readiness probe (/ready) runs every registered component check, for
// example the account database ping and the sweep scheduler state, and
// answers 503 when any of them fails.
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("records", health.PingCheck(records))
//	checker.RegisterCheck("scheduler", health.RunningCheck("sweep scheduler", scheduler.IsRunning))
//
//	mux.HandleFunc("GET /health", checker.LivenessHandler())
//	mux.HandleFunc("GET /ready", checker.ReadinessHandler())
package health

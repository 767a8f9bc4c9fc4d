// Package server provides the MCP server context, health probes, and the
// dedicated metrics server for the inboxtasks application.
//
// # Key Components
//
// ServerContext holds the shared application state: the task store, the
// execution log, and Gmail clients and refresh pipelines created lazily per
// account. Tools read from it; the scheduler and the tasks_refresh tool
// trigger pipelines through it.
//
// HealthChecker exposes /healthz and /readyz for Kubernetes probes, plus a
// /healthz/detailed endpoint that reports uptime and the state of the last
// refresh run.
//
// MetricsServer serves Prometheus metrics on a dedicated port, isolated
// from the MCP transport.
package server

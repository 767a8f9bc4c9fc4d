// Package instrumentation provides OpenTelemetry instrumentation for the
// inboxtasks server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for refresh runs, LLM requests, HTTP requests, and MCP tools
//   - Distributed tracing for refresh runs and external API calls
//   - Prometheus metrics export via /metrics endpoint on a dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Refresh pipeline metrics:
//   - refresh_runs_total: Counter of refresh runs by trigger and result
//   - refresh_duration_seconds: Histogram of refresh run durations
//   - emails_checked_total: Counter of unread emails examined
//   - tasks_extracted_total: Counter of tasks extracted
//
// LLM metrics:
//   - llm_requests_total: Counter of LLM extraction requests by result
//   - llm_request_duration_seconds: Histogram of LLM request durations
//
// Server/HTTP metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// MCP tool metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for refresh runs (refresh.run), MCP tool invocations
// (tool.<name>), and outbound calls to Gmail, Google Tasks, and the LLM
// endpoint (<service>.<operation>).
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: inboxtasks)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "inboxtasks",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordRefreshRun(ctx, "manual", "success", time.Since(start), 12, 3)
//	recorder.RecordToolInvocation(ctx, "tasks_list", "success", time.Since(start))
package instrumentation

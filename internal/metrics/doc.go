// Package metrics records build and module metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder. When a metrics textfile is configured the CLI installs a
// PrometheusRecorder and writes its registry to disk after the build, which
// suits a one-shot process that is never scraped directly.
package metrics

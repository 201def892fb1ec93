// Package metrics records build metrics for the blog generator.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics stay optional:
//
//	svc := build.NewService(cfg) // NoopRecorder
//	svc = build.NewService(cfg, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// There is no long-running server to scrape, so a PrometheusRecorder is
// exported by writing its registry to a node_exporter textfile after each
// build (see WriteTextfile).
package metrics

// Package metric records Prometheus metrics for outgoing API requests.
//
// The CLI does not serve /metrics. Metrics live on a private registry and
// can be written once at exit in the node_exporter textfile format.
package metric

// Package metrics exposes Prometheus counters for hidden content saves,
// renders and hook dispatches.
package metrics

// Package api hosts the HTTP trigger server. Notable routes:
//   - GET /healthz for probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /pubsub/push to run a scrape from a Pub/Sub push subscription.
//   - GET /runs and /runs/{flow_id} to read the run ledger.
package api

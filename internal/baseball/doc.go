// Package baseball defines the records extracted from the sports portal and the
// collaborator interfaces (fetch, sink, notifier) shared by the scraping
// pipeline.
package baseball

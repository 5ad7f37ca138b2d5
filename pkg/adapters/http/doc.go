// Package http serves the bot's operational endpoints: Prometheus metrics fed by engine
// lifecycle hooks, and a health check over the bot's dependencies.
package http

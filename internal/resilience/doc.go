// Package resilience groups the fault-tolerance helpers used around the
// database: a circuit breaker that fails fast while the database is down
// (circuitbreaker) and exponential backoff for the startup connection
// check (retry).
package resilience

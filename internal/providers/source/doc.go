// Package source loads document bytes from the content root or from
// http(s) URLs. Remote fetches go through resty over a retrying
// transport, with a circuit breaker per host.
package source

/*
Package resilience provides circuit breakers for calls to remote hosts.

A Breaker trips after Policy.FailureThreshold consecutive failures, rejects
calls with ErrOpen for Policy.Cooldown, then admits Policy.Probes calls in
half-open state. Probe successes close it; a probe failure reopens it.

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[probes ok]-> Closed
	                        ^                     |
	                        +------[failure]------+

A Group keeps one breaker per key so one unreachable host does not block
fetches from others:

	hosts := resilience.NewGroup(resilience.DefaultPolicy(), logger)
	body, err := resilience.Call(hosts.For(u.Host), func() ([]byte, error) {
		return fetch(ctx, u)
	})
*/
package resilience

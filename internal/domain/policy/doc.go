// Package policy defines the five security tiers and the rule set each one
// applies to untrusted HTML.
//
// Tiers are ordered from strictest to most permissive:
//
//	TextMode < HighRestrictedMode < BalanceMode < LowRestrictedMode < UnestrictedMode
//
// A Policy is plain data: which tags and attributes survive, how URLs are
// vetted, which isolation strategy hosts the result, which behavioral
// patches run after load and which overlay affordances are offered. The
// sanitize, isolate and patch packages read the same Policy, so a tier is
// changed in exactly one place.
package policy

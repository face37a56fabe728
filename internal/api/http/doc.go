/*
Package http exposes the reader over a JSON API.

Views are opened from a location (a path under the content root, or an
http(s) URL when remote loading is enabled) and served as host pages at
/views/:id/page. Settings changes that affect rendering re-render every
open view. Render failures answer with the user-facing notice.
*/
package http

/*
Package render runs the reader pipeline and owns the open views.

A Renderer turns raw bytes into a View: the archive decoder produces
document text, the sanitizer applies the mode's policy, the isolation
wrapper builds a boundary, the patch layer and the overlay attach on load,
and the host page is rendered around the boundary. Unexpected failures are
returned as *RenderError and shown to the user as a Notice.

A Manager keeps one View per id, reloads them when their file changes or
the operating mode does, persists zoom changes and fans overlay updates out
to subscribers.
*/
package render

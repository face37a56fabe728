// Package isolate places a sanitized document behind an isolation
// boundary.
//
// Two strategies exist. ShadowStrategy renders the document into an open
// declarative shadow root inside the host page; it isolates styles only
// and is used for the text tier. FrameStrategy serializes the document
// into the srcdoc of a nested frame with a per-tier sandbox and content
// security policy, which gives the content its own realm.
//
// Callers never touch the isolated tree directly. A Boundary hands out a
// Handle once its content has loaded; work that depends on the loaded
// content registers through OnLoad before Load is called:
//
//	b, err := isolate.Isolate(ctx, doc, p, isolate.Options{Title: name})
//	b.OnLoad(func(h *isolate.Handle) error {
//		h.SetStyle(h.Body(), "overflow", "auto")
//		return nil
//	})
//	err = b.Load(ctx)
//	page, err := isolate.Shell(b, isolate.ShellOptions{Title: name})
package isolate

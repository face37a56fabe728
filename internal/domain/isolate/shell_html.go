package isolate

const shellHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
{{if .CSP}}<meta http-equiv="Content-Security-Policy" content="{{.CSP}}">
{{end}}<meta name="viewport" content="width=device-width, initial-scale=1">
<meta name="html-reader-mode" content="{{.Mode}}">
<title>{{.Title}}</title>
<style>
html, body { margin: 0; height: 100%; }
body { display: flex; flex-direction: column; font: 13px system-ui, sans-serif; }
.html-reader-toolbar { display: flex; gap: 4px; align-items: center; padding: 4px 8px; border-bottom: 1px solid #ddd; background: #f7f7f7; }
.html-reader-toolbar[hidden] { display: none; }
.html-reader-find input.is-error { outline: 2px solid #d33; }
.html-reader-viewport { flex: 1; overflow: auto; position: relative; }
.html-reader-frame { border: 0; width: 100%; height: 100%; display: block; }
.html-reader-host { transform-origin: 0 0; }
</style>
</head>
<body data-strategy="{{.Strategy}}">
{{if or .Search .Zoom}}<div class="html-reader-toolbar">
{{if .Search}}<div class="html-reader-find" hidden>
<input type="search" placeholder="Find" aria-label="Find in document">
<span class="html-reader-count"></span>
<button type="button" data-action="find-previous" title="Previous">&uarr;</button>
<button type="button" data-action="find-next" title="Next">&darr;</button>
<button type="button" data-action="select-all" title="Highlight all">All</button>
<button type="button" data-action="exit" title="Close">&times;</button>
</div>{{end}}
{{if .Zoom}}<div class="html-reader-zoom">
<button type="button" data-action="zoom-out" title="Zoom out">&minus;</button>
<span class="html-reader-scale">{{.Scale}}</span>
<button type="button" data-action="zoom-in" title="Zoom in">+</button>
<button type="button" data-action="zoom-reset" title="Reset zoom">1:1</button>
</div>{{end}}
</div>{{end}}
<div class="html-reader-viewport">
{{.Boundary}}
</div>
<script nonce="{{.Nonce}}">
(function () {
  "use strict";
  var config = {{.Config}};
  var viewport = document.querySelector(".html-reader-viewport");
  var find = document.querySelector(".html-reader-find");
  var input = find ? find.querySelector("input") : null;
  var counter = document.querySelector(".html-reader-count");
  var scaleLabel = document.querySelector(".html-reader-scale");
  var socket = null;
  var queue = [];

  function send(msg) {
    if (socket && socket.readyState === 1) { socket.send(JSON.stringify(msg)); } else { queue.push(msg); }
  }

  function contentDocument() {
    if (config.strategy === "shadow") {
      var host = document.querySelector(".html-reader-host");
      return host && host.shadowRoot ? host.shadowRoot : null;
    }
    var frame = document.querySelector(".html-reader-frame");
    try { return frame && frame.contentDocument; } catch (e) { return null; }
  }

  function contentRoot() {
    var doc = contentDocument();
    if (!doc) { return null; }
    return config.strategy === "shadow" ? doc.querySelector(".html-reader-body") : doc.body;
  }

  function contentWindow() {
    if (config.strategy === "shadow") { return window; }
    var frame = document.querySelector(".html-reader-frame");
    return frame ? frame.contentWindow : null;
  }

  function textNodes(root) {
    var out = [];
    var walker = root.ownerDocument.createTreeWalker(root, NodeFilter.SHOW_TEXT, {
      acceptNode: function (n) {
        var p = n.parentElement;
        return p && p.closest("script,style,template") ? NodeFilter.FILTER_REJECT : NodeFilter.FILTER_ACCEPT;
      }
    });
    while (walker.nextNode()) { out.push(walker.currentNode); }
    return out;
  }

  function ensureHighlightStyle(doc) {
    var target = doc.head || doc;
    if (!target || target.querySelector && target.querySelector("style[data-html-reader=highlight]")) { return; }
    var style = (doc.ownerDocument || doc).createElement("style");
    style.setAttribute("data-html-reader", "highlight");
    style.textContent = "::highlight(html-reader-match){background:#ffe066}::highlight(html-reader-current){background:#ff9632}";
    target.appendChild(style);
  }

  function applySearch(msg) {
    if (counter) { counter.textContent = msg.count ? (msg.current + 1) + "/" + msg.count : ""; }
    if (input) { input.classList.toggle("is-error", !!msg.noMatch); }
    var win = contentWindow();
    var root = contentRoot();
    if (!win || !root || !win.CSS || !win.CSS.highlights) { return; }
    ensureHighlightStyle(contentDocument());
    var nodes = textNodes(root);
    var all = new win.Highlight();
    var current = new win.Highlight();
    var first = null;
    (msg.highlights || []).forEach(function (h) {
      var node = nodes[h.ordinal];
      if (!node) { return; }
      var range = node.ownerDocument.createRange();
      range.setStart(node, Math.min(h.start, node.length));
      range.setEnd(node, Math.min(h.end, node.length));
      (h.current ? current : all).add(range);
      if (h.current && !first) { first = node.parentElement; }
    });
    win.CSS.highlights.set("html-reader-match", all);
    win.CSS.highlights.set("html-reader-current", current);
    if (first) { first.scrollIntoView({ block: "center" }); }
  }

  function clearSearch() {
    var win = contentWindow();
    if (win && win.CSS && win.CSS.highlights) { win.CSS.highlights.clear(); }
    if (counter) { counter.textContent = ""; }
    if (input) { input.classList.remove("is-error"); }
  }

  function applyZoom(msg) {
    var target = config.strategy === "shadow" ? document.querySelector(".html-reader-host") : contentRoot();
    if (target) {
      target.style.transformOrigin = "0 0";
      target.style.transform = msg.transform;
    }
    var scroller = config.strategy === "shadow" ? viewport : (contentDocument() || {}).scrollingElement;
    if (scroller && msg.scrollLeft !== undefined) {
      scroller.scrollLeft = msg.scrollLeft;
      scroller.scrollTop = msg.scrollTop;
    }
    if (scaleLabel) { scaleLabel.textContent = Math.round(msg.scale * 100) + "%"; }
  }

  function showFind(open) {
    if (!find) { return; }
    find.hidden = !open;
    if (open && input) { input.focus(); input.select(); }
  }

  function matches(b, e) {
    var key = e.key.length === 1 ? e.key.toLowerCase() : e.key;
    return b.key.toLowerCase() === key.toLowerCase() && b.ctrl === e.ctrlKey && b.alt === e.altKey && b.shift === e.shiftKey && b.meta === e.metaKey;
  }

  function onKey(e) {
    var bound = (config.bindings || []).some(function (b) { return matches(b, e); });
    if (!bound) { return; }
    if (e.key === "Enter" && e.target !== input && !e.altKey) { return; }
    e.preventDefault();
    send({ type: "key", key: e.key, ctrl: e.ctrlKey, alt: e.altKey, shift: e.shiftKey, meta: e.metaKey });
  }

  function onWheel(e) {
    if (!config.wheel || !e.ctrlKey) { return; }
    e.preventDefault();
    var scroller = config.strategy === "shadow" ? viewport : (contentDocument() || {}).scrollingElement || viewport;
    send({ type: "wheel", deltaY: e.deltaY, x: e.clientX, y: e.clientY, scrollLeft: scroller.scrollLeft, scrollTop: scroller.scrollTop });
  }

  function onClick(e) {
    var path = e.composedPath ? e.composedPath() : [];
    for (var i = 0; i < path.length; i++) {
      var el = path[i];
      if (!el || !el.tagName) { continue; }
      var tag = el.tagName.toLowerCase();
      if (tag !== "a" && tag !== "area") { continue; }
      var href = el.getAttribute("href") || "";
      if (href.charAt(0) !== "#") { return; }
      e.preventDefault();
      var id = href.slice(1);
      try { id = decodeURIComponent(id); } catch (err) {}
      var doc = contentDocument();
      if (!doc) { return; }
      var target = id === "" || id.toLowerCase() === "top" ? contentRoot() : (doc.getElementById ? doc.getElementById(id) : doc.querySelector("[id=\"" + CSS.escape(id) + "\"]"));
      if (!target && id) { target = doc.querySelector("a[name=\"" + CSS.escape(id) + "\"]"); }
      if (target) { target.scrollIntoView(); }
      return;
    }
  }

  function wire(doc) {
    if (!doc) { return; }
    doc.addEventListener("keydown", onKey, true);
    doc.addEventListener("wheel", onWheel, { passive: false, capture: true });
    if (config.fixNavigation) { doc.addEventListener("click", onClick, true); }
  }

  function connect() {
    if (!config.socket) { return; }
    var proto = location.protocol === "https:" ? "wss:" : "ws:";
    socket = new WebSocket(proto + "//" + location.host + config.socket);
    socket.onopen = function () { queue.splice(0).forEach(send); };
    socket.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      switch (msg.type) {
        case "search": applySearch(msg); break;
        case "search_cleared": clearSearch(); break;
        case "zoom": applyZoom(msg); break;
        case "open_find": showFind(true); break;
        case "close_find": showFind(false); clearSearch(); break;
        case "reload": location.reload(); break;
        case "error": console.warn("html reader:", msg.message); break;
      }
    };
  }

  document.addEventListener("keydown", onKey, true);
  if (config.zoom) { viewport.addEventListener("wheel", onWheel, { passive: false }); }
  document.querySelectorAll(".html-reader-toolbar button[data-action]").forEach(function (b) {
    b.addEventListener("click", function () { send({ type: "action", action: b.getAttribute("data-action") }); });
  });
  if (input) {
    input.addEventListener("input", function () { send({ type: "find", text: input.value }); });
    input.addEventListener("keydown", function (e) {
      if (e.key === "Enter" && !e.altKey && !e.shiftKey) { e.preventDefault(); send({ type: "action", action: "find-next" }); }
    });
  }

  if (config.strategy === "shadow") {
    wire(contentDocument());
  } else {
    var frame = document.querySelector(".html-reader-frame");
    if (frame) { frame.addEventListener("load", function () { wire(contentDocument()); }); }
  }
  if (config.scale && config.scale !== 1) { applyZoom({ scale: config.scale, transform: "scale(" + config.scale + ")" }); }
  connect();
})();
</script>
</body>
</html>
`

package policy

// Element and attribute vocabularies shared by the tier policies.

var htmlTags = []string{
	"a", "abbr", "acronym", "address", "area", "article", "aside", "audio",
	"b", "bdi", "bdo", "big", "blink", "blockquote", "body", "br", "button",
	"canvas", "caption", "center", "cite", "code", "col", "colgroup", "data",
	"datalist", "dd", "del", "details", "dfn", "dialog", "dir", "div", "dl",
	"dt", "em", "fieldset", "figcaption", "figure", "font", "footer", "form",
	"h1", "h2", "h3", "h4", "h5", "h6", "head", "header", "hgroup", "hr",
	"html", "i", "iframe", "img", "input", "ins", "kbd", "label", "legend",
	"li", "link", "main", "map", "mark", "marquee", "menu", "menuitem",
	"meter", "nav", "nobr", "ol", "optgroup", "option", "output", "p",
	"picture", "pre", "progress", "q", "rp", "rt", "ruby", "s", "samp",
	"section", "select", "small", "source", "spacer", "span", "strike",
	"strong", "style", "sub", "summary", "sup", "table", "tbody", "td",
	"template", "textarea", "tfoot", "th", "thead", "time", "title", "tr",
	"track", "tt", "u", "ul", "var", "video", "wbr",
}

var svgTags = []string{
	"svg", "altglyph", "altglyphdef", "altglyphitem", "animatecolor",
	"animatemotion", "animatetransform", "circle", "clippath", "defs", "desc",
	"ellipse", "filter", "g", "glyph", "glyphref", "hkern", "image", "line",
	"lineargradient", "marker", "mask", "metadata", "mpath", "path",
	"pattern", "polygon", "polyline", "radialgradient", "rect", "stop",
	"switch", "symbol", "text", "textpath", "tref", "tspan", "view", "vkern",
	"feblend", "fecolormatrix", "fecomponenttransfer", "fecomposite",
	"feconvolvematrix", "fediffuselighting", "fedisplacementmap",
	"fedistantlight", "fedropshadow", "feflood", "fefunca", "fefuncb",
	"fefuncg", "fefuncr", "fegaussianblur", "feimage", "femerge",
	"femergenode", "femorphology", "feoffset", "fepointlight",
	"fespecularlighting", "fespotlight", "fetile", "feturbulence",
}

var mathMLTags = []string{
	"math", "menclose", "merror", "mfenced", "mfrac", "mglyph", "mi",
	"mlabeledtr", "mmultiscripts", "mn", "mo", "mover", "mpadded",
	"mphantom", "mroot", "mrow", "ms", "mspace", "msqrt", "mstyle", "msub",
	"msup", "msubsup", "mtable", "mtd", "mtext", "mtr", "munder",
	"munderover", "mprescripts",
}

var htmlAttrs = []string{
	"accept", "action", "align", "alt", "autocapitalize", "autocomplete",
	"autopictureinpicture", "autoplay", "background", "bgcolor", "border",
	"capture", "cellpadding", "cellspacing", "checked", "cite", "class",
	"clear", "color", "cols", "colspan", "controls", "controlslist",
	"coords", "crossorigin", "datetime", "decoding", "default", "dir",
	"disabled", "disablepictureinpicture", "disableremoteplayback",
	"download", "draggable", "enctype", "enterkeyhint", "face", "for",
	"headers", "height", "hidden", "high", "href", "hreflang", "id",
	"inputmode", "integrity", "ismap", "kind", "label", "lang", "list",
	"loading", "loop", "low", "max", "maxlength", "media", "method", "min",
	"minlength", "multiple", "muted", "name", "nonce", "noshade",
	"novalidate", "nowrap", "open", "optimum", "pattern", "placeholder",
	"playsinline", "popover", "popovertarget", "popovertargetaction",
	"poster", "preload", "pubdate", "radiogroup", "readonly", "rel",
	"required", "rev", "reversed", "role", "rows", "rowspan", "sandbox",
	"spellcheck", "scope", "selected", "shape", "size", "sizes", "slot",
	"span", "srclang", "start", "src", "srcset", "step", "style", "summary",
	"tabindex", "target", "title", "translate", "type", "usemap", "valign",
	"value", "width", "wrap", "xmlns", "aria-*", "data-*",
}

var svgAttrs = []string{
	"accent-height", "accumulate", "additive", "alignment-baseline",
	"ascent", "attributename", "attributetype", "azimuth", "basefrequency",
	"baseline-shift", "begin", "bias", "by", "clip", "clippathunits",
	"clip-path", "clip-rule", "color-interpolation",
	"color-interpolation-filters", "color-profile", "color-rendering", "cx",
	"cy", "d", "dx", "dy", "diffuseconstant", "direction", "display",
	"divisor", "dur", "edgemode", "elevation", "end", "exponent", "fill",
	"fill-opacity", "fill-rule", "filter", "filterunits", "flood-color",
	"flood-opacity", "font-family", "font-size", "font-size-adjust",
	"font-stretch", "font-style", "font-variant", "font-weight", "fx", "fy",
	"g1", "g2", "glyph-name", "glyphref", "gradientunits",
	"gradienttransform", "image-rendering", "in", "in2", "intercept", "k",
	"k1", "k2", "k3", "k4", "kerning", "keypoints", "keysplines",
	"keytimes", "lengthadjust", "letter-spacing", "kernelmatrix",
	"kernelunitlength", "lighting-color", "local", "marker-end",
	"marker-mid", "marker-start", "markerheight", "markerunits",
	"markerwidth", "maskcontentunits", "maskunits", "mask", "mode",
	"numoctaves", "offset", "operator", "opacity", "order", "orient",
	"orientation", "origin", "overflow", "paint-order", "path",
	"pathlength", "patterncontentunits", "patterntransform",
	"patternunits", "points", "preservealpha", "preserveaspectratio",
	"primitiveunits", "r", "rx", "ry", "radius", "refx", "refy",
	"repeatcount", "repeatdur", "restart", "result", "rotate", "scale",
	"seed", "shape-rendering", "slope", "specularconstant",
	"specularexponent", "spreadmethod", "startoffset", "stddeviation",
	"stitchtiles", "stop-color", "stop-opacity", "stroke-dasharray",
	"stroke-dashoffset", "stroke-linecap", "stroke-linejoin",
	"stroke-miterlimit", "stroke-opacity", "stroke", "stroke-width",
	"surfacescale", "systemlanguage", "tablevalues", "targetx", "targety",
	"transform", "transform-origin", "text-anchor", "text-decoration",
	"text-rendering", "textlength", "u1", "u2", "unicode", "values",
	"viewbox", "visibility", "version", "vert-adv-y", "vert-origin-x",
	"vert-origin-y", "word-spacing", "writing-mode", "xchannelselector",
	"ychannelselector", "x", "x1", "x2", "y", "y1", "y2", "z", "zoomandpan",
	"xlink:href", "xlink:title", "xml:space", "xml:lang", "xmlns:xlink",
}

var mathMLAttrs = []string{
	"accent", "accentunder", "bevelled", "close", "columnsalign",
	"columnlines", "columnspan", "denomalign", "depth", "displaystyle",
	"encoding", "fence", "frame", "largeop", "length", "linethickness",
	"lspace", "lquote", "mathbackground", "mathcolor", "mathsize",
	"mathvariant", "maxsize", "minsize", "movablelimits", "notation",
	"numalign", "rowalign", "rowlines", "rowspacing", "rspace", "rquote",
	"scriptlevel", "scriptminsize", "scriptsizemultiplier", "selection",
	"separator", "separators", "stretchy", "subscriptshift",
	"supscriptshift", "symmetric", "voffset",
}

// Attributes the broad tier adds on top of the curated one.
var broadAttrs = []string{
	"accesskey", "allow", "allowfullscreen", "as", "async", "charset", "content",
	"defer", "dirname", "form", "formenctype", "formmethod",
	"formnovalidate", "formtarget", "formaction", "frameborder", "inert",
	"is", "itemid", "itemprop", "itemref", "itemscope", "itemtype",
	"marginheight", "marginwidth", "nomodule", "part", "referrerpolicy",
	"scrolling", "xml:base",
}

// Tags with no safe reading in a text-only rendering.
var textDeniedTags = []string{
	"a", "area", "map", "audio", "video", "source", "track", "img",
	"picture", "image", "svg", "math", "canvas", "iframe", "frame",
	"frameset", "object", "embed", "applet", "param", "portal", "form",
	"input", "button", "select", "option", "optgroup", "textarea",
	"datalist", "output", "fieldset", "keygen", "script", "noscript",
	"template", "style", "link", "meta", "base", "slot", "dialog",
	"marquee", "bgsound", "font", "center", "details", "summary", "menu",
	"menuitem", "meter", "progress", "xmp", "plaintext", "noembed",
	"noframes",
}

var textDropContent = []string{
	"script", "style", "template", "iframe", "frame", "frameset", "object",
	"embed", "applet", "audio", "video", "canvas", "svg", "math", "select",
	"textarea", "datalist", "noembed", "noframes", "xmp", "plaintext",
	"bgsound", "keygen",
}

// Attributes that reference external resources, carry style or can run
// code. Used as the Text tier deny-list together with the "on" prefix.
var textDeniedAttrs = []string{
	"href", "src", "srcset", "srcdoc", "action", "formaction", "style",
	"background", "poster", "data", "codebase", "cite", "longdesc",
	"usemap", "ping", "lowsrc", "dynsrc", "manifest", "icon", "profile",
	"classid", "archive", "xlink:href", "xml:base", "imagesrcset",
	"contenteditable", "autofocus", "tabindex", "draggable", "popover",
	"popovertarget", "accesskey", "is",
}

var curatedDropContent = []string{
	"script", "object", "embed", "applet", "frame", "frameset",
	"foreignobject", "animate", "set", "xmp", "plaintext", "noembed",
	"noframes", "base", "meta", "param",
}

// URLAttributes lists attributes whose value is interpreted as a URL.
var URLAttributes = set(
	"href", "src", "srcset", "action", "formaction", "xlink:href",
	"poster", "background", "cite", "data", "longdesc", "lowsrc", "dynsrc",
	"codebase", "classid", "profile", "manifest", "icon", "archive",
	"usemap", "ping", "imagesrcset",
)

// IsURLAttribute reports whether attr carries a URL.
func IsURLAttribute(attr string) bool {
	_, ok := URLAttributes[attr]
	return ok
}

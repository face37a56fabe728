package archive

import (
	"encoding/base64"
	"mime"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html"
)

// bundle is the set of files extracted from a multi-file archive, keyed
// by slash-separated path without a leading slash.
type bundle map[string][]byte

func (b bundle) add(name string, data []byte) {
	name = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if name == "" || name == "." {
		return
	}
	b[name] = data
}

func isDocumentName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// entry picks the document to render: the shallowest index page, else
// the shallowest HTML file, else the only file.
func (b bundle) entry() (string, bool) {
	var docs []string
	for name := range b {
		if isDocumentName(name) {
			docs = append(docs, name)
		}
	}
	if len(docs) == 0 {
		if len(b) == 1 {
			for name := range b {
				return name, true
			}
		}
		return "", false
	}

	depth := func(name string) int { return strings.Count(name, "/") }
	isIndex := func(name string) bool {
		base := strings.ToLower(path.Base(name))
		return strings.TrimSuffix(base, path.Ext(base)) == "index"
	}
	sort.Slice(docs, func(i, j int) bool {
		a, c := docs[i], docs[j]
		if isIndex(a) != isIndex(c) {
			return isIndex(a)
		}
		if depth(a) != depth(c) {
			return depth(a) < depth(c)
		}
		return a < c
	})
	return docs[0], true
}

// resourceAttrs are the attributes whose relative references are inlined,
// by element. href is limited to elements that load what it points at.
var resourceAttrs = map[string][]string{
	"img":    {"src", "srcset"},
	"source": {"src", "srcset"},
	"video":  {"src", "poster"},
	"audio":  {"src"},
	"track":  {"src"},
	"input":  {"src"},
	"embed":  {"src"},
	"iframe": {"src"},
	"script": {"src"},
	"link":   {"href"},
	"image":  {"href", "xlink:href"},
	"use":    {"href", "xlink:href"},
}

// inline replaces relative references from the document at entry to
// other bundle files with data URIs. It returns how many were replaced.
func (b bundle) inline(doc *html.Node, entry string) int {
	dir := path.Dir(entry)
	count := 0
	stack := []*html.Node{doc}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for c := n.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
		if n.Type != html.ElementNode {
			continue
		}
		attrs := resourceAttrs[strings.ToLower(n.Data)]
		for i := range n.Attr {
			a := &n.Attr[i]
			name := strings.ToLower(a.Key)
			if a.Namespace != "" {
				name = a.Namespace + ":" + name
			}
			if !contains(attrs, name) {
				continue
			}
			if name == "srcset" {
				if v, ok := b.inlineSrcset(a.Val, dir); ok {
					a.Val = v
					count++
				}
				continue
			}
			if v, ok := b.dataURI(a.Val, dir); ok {
				a.Val = v
				count++
			}
		}
	}
	return count
}

func (b bundle) inlineSrcset(value, dir string) (string, bool) {
	candidates := strings.Split(value, ",")
	changed := false
	for i, c := range candidates {
		fields := strings.Fields(c)
		if len(fields) == 0 {
			continue
		}
		if v, ok := b.dataURI(fields[0], dir); ok {
			fields[0] = v
			changed = true
		}
		candidates[i] = strings.Join(fields, " ")
	}
	return strings.Join(candidates, ", "), changed
}

// dataURI resolves ref against dir and encodes the bundle file it names.
func (b bundle) dataURI(ref, dir string) (string, bool) {
	ref = strings.TrimSpace(ref)
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "", false
	}
	target := strings.TrimPrefix(path.Join("/", dir, u.Path), "/")
	if strings.HasPrefix(u.Path, "/") {
		target = strings.TrimPrefix(path.Clean(u.Path), "/")
	}
	data, ok := b[target]
	if !ok {
		return "", false
	}
	mt := strings.ReplaceAll(mediaType(target, data), " ", "")
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data), true
}

// mediaType sniffs the content and falls back to the extension when
// sniffing only finds generic text or binary.
func mediaType(name string, data []byte) string {
	detected := mimetype.Detect(data)
	if !detected.Is("text/plain") && !detected.Is("application/octet-stream") {
		return detected.String()
	}
	if byExt := mime.TypeByExtension(path.Ext(name)); byExt != "" {
		return byExt
	}
	return detected.String()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Package accept implements the file-input style "accept" policy: a
// multiplicity flag plus a comma-separated list of unique file type
// specifiers (".png", "image/png", "image/*").
package accept

import (
	"regexp"
	"strings"

	"github.com/sipeed/mediapaste/pkg/media"
)

// Policy constrains which extracted payloads are processed.
type Policy struct {
	Multiple bool   `json:"multiple"`
	Accept   string `json:"accept,omitempty"`
}

var (
	extensionToken = regexp.MustCompile(`^\.\w+(\.\w+)*$`)
	mimeToken      = regexp.MustCompile(`^[-\w.]+/[-\w.]+$`)
	categoryToken  = regexp.MustCompile(`^(audio|video|image)/\*$`)
)

// Specifiers is the classified form of an accept string. Every token lands
// in exactly one bucket.
type Specifiers struct {
	Extensions   map[string]struct{}
	MIMETypes    map[string]struct{}
	Categories   map[string]struct{}
	Unrecognized []string
}

// ParseAccept splits accept on commas and classifies each token.
func ParseAccept(accept string) Specifiers {
	s := Specifiers{
		Extensions: map[string]struct{}{},
		MIMETypes:  map[string]struct{}{},
		Categories: map[string]struct{}{},
	}
	for _, raw := range strings.Split(accept, ",") {
		token := strings.ToLower(strings.TrimSpace(raw))
		if token == "" {
			continue
		}
		switch {
		case extensionToken.MatchString(token):
			s.Extensions[token[1:]] = struct{}{}
		case mimeToken.MatchString(token):
			s.MIMETypes[token] = struct{}{}
		case categoryToken.MatchString(token):
			s.Categories[strings.SplitN(token, "/", 2)[0]] = struct{}{}
		default:
			s.Unrecognized = append(s.Unrecognized, token)
		}
	}
	return s
}

// Match reports whether a file with the given name and MIME type satisfies
// any specifier. A name without an extension or a type without a slash
// yields an empty key, which never matches.
func (s Specifiers) Match(name, mimeType string) bool {
	if hasExtension(name, s.Extensions) {
		return true
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType != "" {
		if _, ok := s.MIMETypes[mimeType]; ok {
			return true
		}
	}
	if category := categoryOf(mimeType); category != "" {
		if _, ok := s.Categories[category]; ok {
			return true
		}
	}
	return false
}

// hasExtension matches on whole dot-separated suffixes, so ".tar.gz"
// accepts "x.tar.gz" and ".gz" accepts it too.
func hasExtension(name string, exts map[string]struct{}) bool {
	name = strings.ToLower(name)
	for ext := range exts {
		if strings.HasSuffix(name, "."+ext) && len(name) > len(ext)+1 {
			return true
		}
	}
	return false
}

func categoryOf(mimeType string) string {
	i := strings.IndexByte(mimeType, '/')
	if i <= 0 {
		return ""
	}
	return mimeType[:i]
}

// Filter applies p to items and returns the subset to process, in order.
// The input slice is never modified.
func Filter(items []*media.Payload, p Policy) []*media.Payload {
	if !p.Multiple && len(items) > 1 {
		items = items[:1]
	}
	if strings.TrimSpace(p.Accept) == "" {
		return append([]*media.Payload(nil), items...)
	}

	specs := ParseAccept(p.Accept)
	out := make([]*media.Payload, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if specs.Match(item.Name, item.MIMEType) {
			out = append(out, item)
		}
	}
	return out
}

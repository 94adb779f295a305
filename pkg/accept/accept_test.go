package accept

import (
	"testing"

	"github.com/sipeed/mediapaste/pkg/media"
)

func payload(name, mimeType string) *media.Payload {
	return media.NewPayload(name, mimeType, nil)
}

func namesOf(ps []*media.Payload) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestParseAcceptPartitionsTokens(t *testing.T) {
	s := ParseAccept(".png, image/jpeg,video/*, .tar.gz,application/*,bogus,, .png!")

	if _, ok := s.Extensions["png"]; !ok {
		t.Error("missing extension png")
	}
	if _, ok := s.Extensions["tar.gz"]; !ok {
		t.Error("missing extension tar.gz")
	}
	if _, ok := s.MIMETypes["image/jpeg"]; !ok {
		t.Error("missing mime image/jpeg")
	}
	if _, ok := s.Categories["video"]; !ok {
		t.Error("missing category video")
	}
	total := len(s.Extensions) + len(s.MIMETypes) + len(s.Categories) + len(s.Unrecognized)
	if total != 7 {
		t.Fatalf("classified %d tokens, want 7: %+v", total, s)
	}
	want := map[string]bool{"application/*": true, "bogus": true, ".png!": true}
	for _, u := range s.Unrecognized {
		if !want[u] {
			t.Errorf("unexpected unrecognized token %q", u)
		}
	}
}

func TestMalformedTokenMatchesNothing(t *testing.T) {
	s := ParseAccept("bogus")
	for _, p := range []*media.Payload{payload("bogus", "bogus"), payload("a.png", "image/png"), payload("", "")} {
		if s.Match(p.Name, p.MIMEType) {
			t.Errorf("malformed token matched %s", p)
		}
	}
}

func TestMatchMissingDelimiters(t *testing.T) {
	s := ParseAccept(".png,image/*")
	if s.Match("png", "") {
		t.Error("name without dot should not match")
	}
	if s.Match("file", "image") {
		t.Error("type without slash should not match")
	}
	if !s.Match("shot.PNG", "") {
		t.Error("extension match should ignore case")
	}
	if !s.Match("noext", "IMAGE/gif") {
		t.Error("category match should ignore case")
	}
}

func TestFilterSingleKeepsFirst(t *testing.T) {
	items := []*media.Payload{payload("a.gif", "image/gif"), payload("b.png", "image/png")}

	got := Filter(items, Policy{Multiple: false})
	if len(got) != 1 || got[0] != items[0] {
		t.Fatalf("Filter = %v, want first item only", namesOf(got))
	}

	// Truncation happens before type filtering.
	got = Filter(items, Policy{Multiple: false, Accept: ".png"})
	if len(got) != 0 {
		t.Fatalf("Filter = %v, want empty", namesOf(got))
	}
}

func TestFilterDropScenario(t *testing.T) {
	items := []*media.Payload{
		payload("one.png", "image/png"),
		payload("two.gif", "image/gif"),
		payload("three.jpg", "image/jpeg"),
	}
	got := namesOf(Filter(items, Policy{Multiple: true, Accept: ".png,.jpg"}))
	if len(got) != 2 || got[0] != "one.png" || got[1] != "three.jpg" {
		t.Fatalf("Filter = %v, want [one.png three.jpg]", got)
	}
}

func TestFilterNoAcceptPassesAll(t *testing.T) {
	items := []*media.Payload{payload("a.txt", "text/plain"), payload("b", "")}
	got := Filter(items, Policy{Multiple: true})
	if len(got) != 2 {
		t.Fatalf("Filter = %v", namesOf(got))
	}
	got[0] = nil
	if items[0] == nil {
		t.Fatal("Filter must not alias the input slice")
	}
}

func TestFilterIdempotent(t *testing.T) {
	items := []*media.Payload{
		payload("a.png", "image/png"),
		payload("b.mp3", "audio/mpeg"),
		payload("c.pdf", "application/pdf"),
		payload("d", "video/mp4"),
	}
	policies := []Policy{
		{Multiple: true, Accept: "image/*,video/*"},
		{Multiple: true, Accept: ".pdf,audio/mpeg"},
		{Multiple: false, Accept: "image/png"},
		{Multiple: true},
	}
	for _, p := range policies {
		once := Filter(items, p)
		twice := Filter(once, p)
		if len(once) != len(twice) {
			t.Fatalf("policy %+v: %v then %v", p, namesOf(once), namesOf(twice))
		}
		for i := range once {
			if once[i] != twice[i] {
				t.Fatalf("policy %+v: item %d differs", p, i)
			}
		}
	}
}

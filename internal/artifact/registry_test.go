package artifact

import (
	"errors"
	"testing"
)

type stub struct {
	tag  Tag
	name string
}

func (s *stub) Tag() Tag { return s.tag }

type other struct{}

func (other) Tag() Tag { return TagDetected }

func TestRegistryLastWriteWins(t *testing.T) {
	r := NewRegistry()
	first := &stub{tag: TagSource, name: "first"}
	second := &stub{tag: TagSource, name: "second"}

	if err := r.Add(first); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(second); err != nil {
		t.Fatal(err)
	}

	got, ok := Lookup[*stub](r, TagSource)
	if !ok {
		t.Fatal("expected source artifact")
	}
	if got.name != "second" {
		t.Errorf("got %q, want second", got.name)
	}
}

func TestRegistryMissing(t *testing.T) {
	r := NewRegistry()
	if a, ok := r.Get(TagRotated); ok || a != nil {
		t.Errorf("Get on empty registry = (%v, %v)", a, ok)
	}
	if r.Has(TagRotated) {
		t.Error("Has on empty registry")
	}
}

func TestRegistryUnknownTag(t *testing.T) {
	r := NewRegistry()
	err := r.Add(&stub{tag: Tag(99)})
	var unknown *UnknownTagError
	if !errors.As(err, &unknown) {
		t.Fatalf("Add(Tag(99)) err = %v, want *UnknownTagError", err)
	}
	if len(r.Tags()) != 0 {
		t.Error("invalid artifact must not be stored")
	}
	if err := r.Add(nil); err == nil {
		t.Error("Add(nil) should fail")
	}
}

func TestRegistryLookupWrongType(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(other{}); err != nil {
		t.Fatal(err)
	}
	if _, ok := Lookup[*stub](r, TagDetected); ok {
		t.Error("Lookup with wrong type should report false")
	}
}

func TestRegistryUserArtifacts(t *testing.T) {
	r := NewRegistry()
	if r.HasUserArtifacts() {
		t.Error("empty registry has no user artifacts")
	}

	_ = r.Add(&stub{tag: TagDefault})
	if r.HasUserArtifacts() {
		t.Error("default artifact is not a user artifact")
	}

	_ = r.Add(&stub{tag: TagCorrelationMap})
	_ = r.Add(&stub{tag: TagSource})

	got := r.UserArtifacts()
	if len(got) != 2 {
		t.Fatalf("UserArtifacts() len = %d, want 2", len(got))
	}
	if got[0].Tag() != TagSource || got[1].Tag() != TagCorrelationMap {
		t.Errorf("UserArtifacts() order = %v, %v", got[0].Tag(), got[1].Tag())
	}

	tags := r.Tags()
	if len(tags) != 3 || tags[0] != TagDefault {
		t.Errorf("Tags() = %v", tags)
	}
}

func TestRegistryListeners(t *testing.T) {
	r := NewRegistry()
	var seen []Tag
	r.OnAdd(func(a Artifact) { seen = append(seen, a.Tag()) })

	_ = r.Add(&stub{tag: TagFound})
	_ = r.Add(&stub{tag: Tag(-1)})
	_ = r.Add(&stub{tag: TagRotated})

	if len(seen) != 2 || seen[0] != TagFound || seen[1] != TagRotated {
		t.Errorf("listener saw %v", seen)
	}
}

func TestParseTag(t *testing.T) {
	for _, tag := range Tags() {
		got, err := ParseTag(tag.String())
		if err != nil || got != tag {
			t.Errorf("ParseTag(%q) = %v, %v", tag.String(), got, err)
		}
	}
	if got, _ := ParseTag("  Correlation Map "); got != TagCorrelationMap {
		t.Errorf("case-insensitive parse = %v", got)
	}

	_, err := ParseTag("thumbnail")
	var unknown *UnknownTagError
	if !errors.As(err, &unknown) || unknown.Name != "thumbnail" {
		t.Errorf("ParseTag(thumbnail) err = %v", err)
	}
}

func TestTagSlug(t *testing.T) {
	if got := TagFoundAndCropped.Slug(); got != "destination_found_and_cropped_image" {
		t.Errorf("Slug() = %q", got)
	}
	if Tag(50).Valid() || Tag(50).Check() == nil {
		t.Error("Tag(50) should be invalid")
	}
}

func TestRegistryRetain(t *testing.T) {
	r := NewRegistry()
	for _, tag := range []Tag{TagSource, TagDestination, TagFound, TagCorrelationMap} {
		_ = r.Add(&stub{tag: tag})
	}

	dropped := r.Retain(TagSource, TagDestination)
	if len(dropped) != 2 || dropped[0] != TagFound || dropped[1] != TagCorrelationMap {
		t.Errorf("Retain dropped %v", dropped)
	}
	tags := r.Tags()
	if len(tags) != 2 || tags[0] != TagSource || tags[1] != TagDestination {
		t.Errorf("Tags() after Retain = %v", tags)
	}
	if got := r.Retain(TagSource, TagDestination); len(got) != 0 {
		t.Errorf("second Retain dropped %v", got)
	}
}

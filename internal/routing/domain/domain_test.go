package domain

import "testing"

func TestSplitTagsTrimsFoldsAndDropsEmpties(t *testing.T) {
	tags := SplitTags(" Legal , TAX ,, lisboa ")
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d (%v)", len(tags), tags)
	}
	for i, want := range []string{"legal", "tax", "lisboa"} {
		if tags[i] != want {
			t.Fatalf("expected tag %q at %d, got %q", want, i, tags[i])
		}
	}
}

func TestSplitTagsEmptyInputYieldsEmptySet(t *testing.T) {
	if got := SplitTags("  ,  , "); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestNormalizeTagCSVCanonicalizes(t *testing.T) {
	if got := NormalizeTagCSV(" Legal , lisboa "); got != "legal,lisboa" {
		t.Fatalf("expected %q, got %q", "legal,lisboa", got)
	}
}

func TestRequestedServicesUsesNormalizedView(t *testing.T) {
	lead := Lead{InterestServices: "Legal, TAX"}
	services := lead.RequestedServices()
	if len(services) != 2 || services[0] != "legal" || services[1] != "tax" {
		t.Fatalf("expected normalized services, got %v", services)
	}
}

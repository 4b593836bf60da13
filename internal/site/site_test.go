package site

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	got, err := Parse([]byte(`
name: River Relief
impact:
  volunteers: 400
channels:
  - label: bKash
    value: "01999999999"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Name != "River Relief" || got.Impact.Volunteers != 400 {
		t.Fatalf("overrides not applied: %+v", got)
	}
	if got.Impact.PeopleHelped != 5420 || got.Impact.ProjectsCompleted != 87 {
		t.Fatalf("unset impact fields should keep defaults: %+v", got.Impact)
	}
	want := []Channel{{Label: "bKash", Value: "01999999999"}}
	if diff := cmp.Diff(want, got.Channels); diff != "" {
		t.Fatalf("channels (-want +got):\n%s", diff)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"bad yaml":        "name: [unterminated",
		"negative impact": "impact:\n  people_helped: -1\n",
		"empty channel":   "channels:\n  - label: Bank\n",
		"bad email":       "contact_email: nobody\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error for %q", doc)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte("tagline: Every taka counts\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(got.Tagline, "taka") {
		t.Fatalf("tagline = %q", got.Tagline)
	}
}

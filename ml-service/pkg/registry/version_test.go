package registry

import (
	"testing"

	"plantpulse/ml-service/pkg/dto/ml"
)

func TestNextVersion(t *testing.T) {
	tests := []struct {
		name    string
		latest  string
		bump    string
		want    string
		wantErr bool
	}{
		{"empty registry starts at 1.0.0", "", ml.BumpMajor, "1.0.0", false},
		{"default bump is patch", "1.0.0", "", "1.0.1", false},
		{"patch bump", "1.2.3", ml.BumpPatch, "1.2.4", false},
		{"minor bump resets patch", "1.2.3", ml.BumpMinor, "1.3.0", false},
		{"major bump resets minor and patch", "1.2.3", ml.BumpMajor, "2.0.0", false},
		{"unknown bump level", "1.2.3", "mega", "", true},
		{"unparseable latest version", "banana", ml.BumpPatch, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nextVersion(tt.latest, tt.bump)
			if (err != nil) != tt.wantErr {
				t.Fatalf("nextVersion(%q, %q) error = %v, wantErr %v", tt.latest, tt.bump, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("nextVersion(%q, %q) = %q, want %q", tt.latest, tt.bump, got, tt.want)
			}
		})
	}
}

func TestLatestVersion(t *testing.T) {
	versions := func(vs ...string) []ml.ModelVersion {
		out := make([]ml.ModelVersion, len(vs))
		for i, v := range vs {
			out[i] = ml.ModelVersion{Version: v}
		}
		return out
	}

	tests := []struct {
		name     string
		versions []ml.ModelVersion
		want     string
	}{
		{"empty registry", nil, ""},
		{"single version", versions("1.0.0"), "1.0.0"},
		{"numeric ordering beats string ordering", versions("1.9.0", "1.10.0"), "1.10.0"},
		{"major outranks large minor", versions("1.99.99", "2.0.0"), "2.0.0"},
		{"order in the slice does not matter", versions("1.1.0", "1.0.0", "1.2.0"), "1.2.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := latestVersion(tt.versions); got != tt.want {
				t.Errorf("latestVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompareSemver(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.0.0", "1.0.1", -1},
		{"1.10.0", "1.9.0", 1},
		{"2.0.0", "1.99.99", 1},
		{"garbage", "1.0.0", -1},
		{"1.0.0", "garbage", 1},
		{"garbage", "junk", 0},
	}
	for _, tt := range tests {
		if got := compareSemver(tt.a, tt.b); got != tt.want {
			t.Errorf("compareSemver(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

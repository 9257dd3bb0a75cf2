package version

import "testing"

func TestCompareOrdering(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"57", "57", 0},
		{"57", "58", -1},
		{"100", "99", 1},
		{"4.4", "4.4.3", -1},
		{"4.4.0", "4.4", 0},
		{"15.2", "15.10", -1},
		{"TP", "999", 1},
		{"current", "TP", 0},
		{"all", "1", -1},
		{"all", "all", 0},
		{"garbage", "0", 0},
		{"12-beta", "12", 0},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareIsAntisymmetric(t *testing.T) {
	versions := []string{"1", "2", "2.5", "10", "15.2-15.3", "TP", "all", "junk"}
	for _, a := range versions {
		for _, b := range versions {
			if Compare(a, b) != -Compare(b, a) {
				t.Errorf("Compare(%q, %q) and Compare(%q, %q) are not antisymmetric", a, b, b, a)
			}
		}
	}
}

func TestCompareIsTransitive(t *testing.T) {
	versions := []string{"all", "1", "2", "2.5", "10", "57", "100", "TP"}
	for i := 0; i < len(versions); i++ {
		for j := i + 1; j < len(versions); j++ {
			for k := j + 1; k < len(versions); k++ {
				if Compare(versions[i], versions[j]) <= 0 &&
					Compare(versions[j], versions[k]) <= 0 &&
					Compare(versions[i], versions[k]) > 0 {
					t.Errorf("transitivity broken for %q <= %q <= %q", versions[i], versions[j], versions[k])
				}
			}
		}
	}
}

func TestInRange(t *testing.T) {
	tests := []struct {
		v, rng string
		want   bool
	}{
		{"57", "57", true},
		{"57", "58", false},
		{"57", "50-60", true},
		{"50", "50-60", true},
		{"60", "50-60", true},
		{"61", "50-60", false},
		{"49", "50-60", false},
		{"15.2", "15.2-15.3", true},
	}
	for _, tt := range tests {
		if got := InRange(tt.v, tt.rng); got != tt.want {
			t.Errorf("InRange(%q, %q) = %v, want %v", tt.v, tt.rng, got, tt.want)
		}
	}
}

func TestIsRange(t *testing.T) {
	tests := []struct {
		rng  string
		want bool
	}{
		{"15.2-15.3", true},
		{"4.4.3-4.4.4", true},
		{"57", false},
		{"all", false},
		{"-5", false}, // leading dash is not a range separator
	}
	for _, tt := range tests {
		if got := IsRange(tt.rng); got != tt.want {
			t.Errorf("IsRange(%q) = %v, want %v", tt.rng, got, tt.want)
		}
	}
}

func TestSplitRange(t *testing.T) {
	s, e := SplitRange("15.2-15.3")
	if s != "15.2" || e != "15.3" {
		t.Fatalf("SplitRange(15.2-15.3) = %q, %q", s, e)
	}
	s, e = SplitRange("57")
	if s != "57" || e != "57" {
		t.Fatalf("SplitRange(57) = %q, %q", s, e)
	}
}

func TestNum(t *testing.T) {
	tests := []struct {
		v    string
		want float64
	}{
		{"57", 57},
		{"15.2", 15.2},
		{"15.10", 15.10},
		{"TP", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := Num(tt.v); got != tt.want {
			t.Errorf("Num(%q) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

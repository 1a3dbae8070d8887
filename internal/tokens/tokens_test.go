package tokens

import "testing"

func TestLooksCredential(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"hex secret", "9f8a6b3c2d4e5f60718293a4b5c6d7e8", true},
		{"base64 secret", "c3VwZXJzZWNyZXRrZXkxMjM0NTY=", true},
		{"high entropy", "x9K!mQ7@vL4#pR8$", true},
		{"too short", "ab12", false},
		{"placeholder your", "your-api-key-here", false},
		{"placeholder changeme", "changeme1234", false},
		{"template var", "${DATABASE_PASSWORD}", false},
		{"plain words", "hello_world1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksCredential(tt.value); got != tt.want {
				t.Fatalf("LooksCredential(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestEntropyOrdering(t *testing.T) {
	low := Entropy("aaaaaaaaaaaa")
	high := Entropy("x9K2mQ7vL4pR8sT1")
	if low >= high {
		t.Fatalf("entropy ordering wrong: %f >= %f", low, high)
	}
	if Entropy("") != 0 {
		t.Fatal("empty string must have zero entropy")
	}
}

func TestIsHexRejectsOddLength(t *testing.T) {
	if IsHex("abc") {
		t.Fatal("odd-length hex accepted")
	}
	if !IsHex("abcd") {
		t.Fatal("valid hex rejected")
	}
}

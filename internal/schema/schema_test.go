package schema

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		scale   int
		wantErr bool
	}{
		{name: "3-point scale", scale: 3},
		{name: "5-point scale", scale: 5},
		{name: "unsupported scale", scale: 4, wantErr: true},
		{name: "zero scale", scale: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.scale)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if s.Scale() != tt.scale {
				t.Errorf("expected scale %d, got %d", tt.scale, s.Scale())
			}
		})
	}
}

func TestScoredKeys(t *testing.T) {
	s := MustNew(3)

	keys := s.ScoredKeys()
	if len(keys) != 10 {
		t.Fatalf("expected 10 scored categories, got %d", len(keys))
	}
	if keys[0] != KeyShotQuality || keys[9] != KeyThreat {
		t.Errorf("unexpected key order: %v", keys)
	}
	for _, key := range keys {
		if key == KeySize {
			t.Error("size must not count as a scored category")
		}
	}
}

func TestCategories(t *testing.T) {
	s := MustNew(3)

	cats := s.Categories()
	if len(cats) != 11 {
		t.Fatalf("expected 11 categories including size, got %d", len(cats))
	}

	size, ok := s.Category(KeySize)
	if !ok {
		t.Fatal("size category missing")
	}
	if size.Scored {
		t.Error("size category must be informational")
	}
	if len(size.Options) != 3 {
		t.Errorf("expected 3 size options, got %d", len(size.Options))
	}

	shot, ok := s.Category(KeyShotQuality)
	if !ok {
		t.Fatal("shot quality category missing")
	}
	if shot.Section != SectionOffense {
		t.Errorf("expected section %q, got %q", SectionOffense, shot.Section)
	}
	if len(shot.Options) != 3 {
		t.Errorf("expected 3 options on the 3-point scale, got %d", len(shot.Options))
	}
}

func TestValidRating(t *testing.T) {
	tests := []struct {
		name  string
		scale int
		key   string
		value int
		want  bool
	}{
		{name: "in range", scale: 3, key: KeyDefense, value: 2, want: true},
		{name: "upper bound", scale: 3, key: KeyDefense, value: 3, want: true},
		{name: "above scale", scale: 3, key: KeyDefense, value: 4, want: false},
		{name: "below one", scale: 3, key: KeyDefense, value: 0, want: false},
		{name: "five valid on 5-point scale", scale: 5, key: KeyDefense, value: 5, want: true},
		{name: "unknown key", scale: 3, key: "dreier", value: 2, want: false},
		{name: "size is not scorable", scale: 3, key: KeySize, value: 2, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := MustNew(tt.scale)
			if got := s.ValidRating(tt.key, tt.value); got != tt.want {
				t.Errorf("ValidRating(%q, %d) = %v, want %v", tt.key, tt.value, got, tt.want)
			}
		})
	}
}

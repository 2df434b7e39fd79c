package types

import "testing"

func TestPointValidate(t *testing.T) {
	cases := []struct {
		name    string
		p       Point
		wantErr bool
	}{
		{"valid", Point{Lat: 25.033, Lng: 121.565}, false},
		{"lat north pole", Point{Lat: 90, Lng: 0}, false},
		{"lat south pole", Point{Lat: -90, Lng: 0}, false},
		{"lng date line", Point{Lat: 0, Lng: 180}, false},
		{"lat too big", Point{Lat: 90.0001, Lng: 0}, true},
		{"lat too small", Point{Lat: -91, Lng: 0}, true},
		{"lng too big", Point{Lat: 0, Lng: 180.5}, true},
		{"lng too small", Point{Lat: 0, Lng: -181}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate(%+v) = %v, wantErr %v", tc.p, err, tc.wantErr)
			}
			if err != nil && err != ErrInvalidCoordinate {
				t.Errorf("expected ErrInvalidCoordinate, got %v", err)
			}
		})
	}
}

func TestNewIDUnique(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Fatalf("expected distinct IDs, got %s twice", a)
	}
	if len(a) == 0 {
		t.Fatal("expected non-empty ID")
	}
}

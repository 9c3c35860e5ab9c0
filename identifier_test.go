package lockgate

import "testing"

func TestResolveLookupField(t *testing.T) {
	cases := []struct {
		identifier string
		want       LookupField
	}{
		{"john", FieldName},
		{"john.smith", FieldName},
		{"john@example.com", FieldEmail},
		{"john.smith+test@sub.example.co", FieldEmail},
		{"john@example", FieldName},
		{"@example.com", FieldName},
		{"john@.com", FieldName},
		{"", FieldName},
		{"john@example.technology", FieldName},
	}

	for _, tc := range cases {
		if got := ResolveLookupField(tc.identifier); got != tc.want {
			t.Fatalf("ResolveLookupField(%q) = %q, want %q", tc.identifier, got, tc.want)
		}
	}
}

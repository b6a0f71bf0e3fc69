package sequence

import "testing"

func TestPatientCode(t *testing.T) {
	cases := []struct {
		id   int64
		want string
	}{
		{1, "PAT-0001"},
		{42, "PAT-0042"},
		{999, "PAT-0999"},
		{9999, "PAT-9999"},
		{10000, "PAT-10000"},
		{123456, "PAT-123456"},
	}
	for _, c := range cases {
		if got := PatientCode(c.id); got != c.want {
			t.Fatalf("PatientCode(%d) = %q, want %q", c.id, got, c.want)
		}
	}
}

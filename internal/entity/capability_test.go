package entity

import "testing"

func TestCapabilitySetContainsAll(t *testing.T) {
	agent := NewCapabilitySet(CapabilityTextProcessing, CapabilityReasoning)

	cases := []struct {
		name     string
		required CapabilitySet
		want     bool
	}{
		{"empty required", CapabilitySet{}, true},
		{"subset", NewCapabilitySet(CapabilityTextProcessing), true},
		{"exact", NewCapabilitySet(CapabilityTextProcessing, CapabilityReasoning), true},
		{"missing one", NewCapabilitySet(CapabilityTextProcessing, CapabilityCodeGeneration), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := agent.ContainsAll(c.required); got != c.want {
				t.Fatalf("ContainsAll(%v) = %v, want %v", c.required, got, c.want)
			}
		})
	}
}

func TestTaskRequiredCapabilitiesRoundTrip(t *testing.T) {
	task := NewTask("t1", "do the thing", "u1", []Capability{CapabilityTextProcessing, CapabilityReasoning}, 1, nil, nil)

	got := task.RequiredCapabilities()
	if !got.Has(CapabilityTextProcessing) || !got.Has(CapabilityReasoning) {
		t.Fatalf("RequiredCapabilities() = %v, missing expected tags", got)
	}
	if len(got) != 2 {
		t.Fatalf("RequiredCapabilities() len = %d, want 2", len(got))
	}
}

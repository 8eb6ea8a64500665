package gn

import (
	"errors"
	"testing"
)

func target(dir, name string, deps ...string) *Target {
	t := &Target{
		Label:   Label{Dir: dir, Name: name},
		Kind:    "group",
		Vars:    map[string]Value{},
		Defined: Location{File: dir + "/BUILD.stargn", Line: 1, Column: 1},
	}

	if len(deps) > 0 {
		items := make([]Value, len(deps))
		for i, d := range deps {
			items[i] = StringValue(d)
		}

		t.Vars["deps"] = ListValue(items...)
		t.VarOrder = []string{"deps"}
	}

	return t
}

func TestBuilder_Resolve(t *testing.T) {
	b := NewBuilder()

	for _, tg := range []*Target{
		target("//app", "main", ":lib", "//base"),
		target("//app", "lib", "//base:base"),
		target("//base", "base"),
	} {
		if err := b.Add(tg); err != nil {
			t.Fatalf("Add(%v): %v", tg.Label, err)
		}
	}

	sorted, err := b.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var got []string
	for _, tg := range sorted {
		got = append(got, tg.Label.String())
	}

	want := []string{"//base:base", "//app:lib", "//app:main"}
	if len(got) != len(want) {
		t.Fatalf("Resolve() = %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Resolve()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if b.Len() != 3 || b.Targets()[0].Label.Name != "main" {
		t.Errorf("Targets() lost definition order: %v", b.Targets())
	}
}

func TestBuilder_ResolveErrors(t *testing.T) {
	tests := []struct {
		name    string
		targets []*Target
		want    string
	}{
		{
			"missing",
			[]*Target{target("//app", "a", ":b")},
			"Unresolved dependency.",
		},
		{
			"cycle",
			[]*Target{
				target("//app", "a", ":b"),
				target("//app", "b", ":c"),
				target("//app", "c", ":a"),
			},
			"Dependency cycle.",
		},
		{
			"self",
			[]*Target{target("//app", "a", ":a")},
			"Dependency cycle.",
		},
		{
			"bad label",
			[]*Target{target("//app", "a", "/abs:x")},
			"System-absolute labels are not supported.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			for _, tg := range tt.targets {
				if err := b.Add(tg); err != nil {
					t.Fatal(err)
				}
			}

			err := b.Check()

			var gerr *Err
			if !errors.As(err, &gerr) {
				t.Fatalf("Check() = %v, want *Err", err)
			}

			if gerr.Message != tt.want {
				t.Errorf("message = %q, want %q", gerr.Message, tt.want)
			}
		})
	}
}

func TestTarget_DepsNotStrings(t *testing.T) {
	tg := target("//app", "a")
	tg.Vars["deps"] = ListValue(Value{Type: ValueInt, Int: 1})

	if _, err := tg.Deps(); err == nil {
		t.Error("Deps() should reject non-string items")
	}
}

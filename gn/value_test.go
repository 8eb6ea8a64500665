package gn

import "testing"

func TestUnquote(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`"plain"`, "plain", true},
		{`""`, "", true},
		{`"say \"hi\""`, `say "hi"`, true},
		{`"a\\b"`, `a\b`, true},
		{`"\$x"`, "$x", true},
		{`"c:\temp"`, `c:\temp`, true},
		{`"a"b"`, `a"b`, true},
		{`plain`, "", false},
		{`"`, "", false},
	}

	for _, tt := range tests {
		got, ok := Unquote(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Unquote(%s) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, s := range []string{"", "x", `a"b`, `c:\dir`, "$root", `\"`} {
		got, ok := Unquote(Quote(s))
		if !ok || got != s {
			t.Errorf("Unquote(Quote(%q)) = (%q, %v)", s, got, ok)
		}
	}
}

func TestValueString(t *testing.T) {
	v := ListValue(StringValue("a"), Value{Type: ValueBool, Bool: true}, Value{Type: ValueInt, Int: -3})
	if got, want := v.String(), `[ "a", true, -3 ]`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	if got := ListValue().String(); got != "[]" {
		t.Errorf("empty list String() = %q", got)
	}
}

func TestValueStrings(t *testing.T) {
	if got, ok := ListValue(StringValue("a"), StringValue("b")).Strings(); !ok || len(got) != 2 {
		t.Errorf("Strings() = %v, %v", got, ok)
	}

	if _, ok := ListValue(StringValue("a"), Value{Type: ValueInt}).Strings(); ok {
		t.Error("mixed list should not convert to strings")
	}

	if _, ok := StringValue("a").Strings(); ok {
		t.Error("string should not convert to strings")
	}
}

func TestEvalExpr(t *testing.T) {
	lookup := func(name string) (Value, bool) {
		if name == "root" {
			return StringValue("//"), true
		}

		return Value{}, false
	}

	v, err := evalExpr(List(StringLiteral(`"a"`), Ident("root"), BoolLiteral(false), IntLiteral(7)), lookup)
	if err != nil {
		t.Fatalf("evalExpr: %v", err)
	}

	if got, want := v.String(), `[ "a", "//", false, 7 ]`; got != want {
		t.Errorf("evalExpr = %s, want %s", got, want)
	}

	if _, err := evalExpr(Ident("missing"), lookup); err == nil {
		t.Error("undefined identifier should fail")
	}
}

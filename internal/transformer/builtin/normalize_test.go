package builtin

import (
	"reflect"
	"testing"

	"casetrend/internal/schema"
	"casetrend/pkg/records"
)

func TestNormalizeApply_TableDriven(t *testing.T) {
	tests := []struct {
		name string
		in   records.Record
		want records.Record
	}{
		{
			name: "simple_trim_spaces",
			in:   records.Record{{Key: "a", Value: " foo "}, {Key: "b", Value: "\tbar\n"}},
			want: records.Record{{Key: "a", Value: "foo"}, {Key: "b", Value: "bar"}},
		},
		{
			name: "nbsp_replaced_and_trimmed",
			in:   records.Record{{Key: "a", Value: nbsp + "1" + nbsp + "200" + nbsp}},
			want: records.Record{{Key: "a", Value: "1 200"}},
		},
		{
			name: "mojibake_nbsp",
			in:   records.Record{{Key: "a", Value: "KeralaÂ" + nbsp}},
			want: records.Record{{Key: "a", Value: "Kerala"}},
		},
		{
			name: "empty_stays_empty",
			in:   records.Record{{Key: "a", Value: ""}},
			want: records.Record{{Key: "a", Value: ""}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize{}.Apply([]records.Record{tt.in})
			if !reflect.DeepEqual(got[0], tt.want) {
				t.Fatalf("got %#v; want %#v", got[0], tt.want)
			}
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := []records.Record{{{Key: "a", Value: " x "}}}
	_ = Normalize{}.Apply(in)
	if in[0][0].Value != " x " {
		t.Fatalf("input mutated: %q", in[0][0].Value)
	}
}

func TestHeadersMapsAliases(t *testing.T) {
	in := []records.Record{{{Key: "State/UT", Value: "Goa"}, {Key: "Deaths", Value: "1"}}}
	got := Headers{}.Apply(in)
	want := []records.Record{{{Key: schema.ColRegion, Value: "Goa"}, {Key: schema.ColDeath, Value: "1"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v; want %#v", got, want)
	}
}

func TestRequire(t *testing.T) {
	in := []records.Record{
		{{Key: "Region", Value: "A"}},
		{{Key: "Region", Value: "  "}},
		{{Key: "Other", Value: "x"}},
		{{Key: "Region", Value: "B"}},
	}
	var rejected []RejectedRow
	got := Require{Fields: []string{"Region"}, Reject: func(r RejectedRow) { rejected = append(rejected, r) }}.Apply(in)

	if len(got) != 2 {
		t.Fatalf("kept %d records; want 2", len(got))
	}
	if len(rejected) != 2 || rejected[0].Index != 1 || rejected[1].Index != 2 {
		t.Fatalf("rejected=%#v", rejected)
	}
	if rejected[0].Field != "Region" {
		t.Fatalf("field=%q; want Region", rejected[0].Field)
	}
	if len(in) != 4 {
		t.Fatalf("input resliced")
	}
}

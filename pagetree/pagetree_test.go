package pagetree_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	pdf "pdfcore.dev/engine"
	"pdfcore.dev/engine/pagetree"
)

// memGetter is a trivial in-memory pdf.Getter for testing, standing in
// for a *pdf.Reader backed by an actual file.
type memGetter map[pdf.Reference]pdf.Object

func (m memGetter) Get(ref pdf.Reference) (pdf.Object, error) {
	return m[ref], nil
}

func TestIterator(t *testing.T) {
	n := 10
	refs := make([]pdf.Reference, n)
	for i := range refs {
		refs[i] = pdf.NewReference(uint32(i+1), 0)
	}

	data := memGetter{}
	dicts := make([]pdf.Dict, n)
	for i := range dicts {
		dicts[i] = pdf.Dict{
			"Type": pdf.Name("Page"),
		}
		if i == 1 {
			dicts[i]["Resources"] = pdf.Name("Q")
		}
		data[refs[i]] = dicts[i]
	}

	internal00Ref := pdf.NewReference(100, 0)
	data[internal00Ref] = pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Count": pdf.Integer(3),
		"Kids":  pdf.Array{refs[1], refs[2]},
	}

	internal0Ref := pdf.NewReference(101, 0)
	data[internal0Ref] = pdf.Dict{
		"Type":      pdf.Name("Pages"),
		"Count":     pdf.Integer(3),
		"Kids":      pdf.Array{internal00Ref, refs[3]},
		"Resources": pdf.Name("P"),
	}

	internal10Ref := pdf.NewReference(102, 0)
	data[internal10Ref] = pdf.Dict{
		"Type":     pdf.Name("Pages"),
		"Count":    pdf.Integer(2),
		"Kids":     pdf.Array{refs[4], refs[5]},
		"MediaBox": pdf.Name("A"),
	}

	internal11Ref := pdf.NewReference(103, 0)
	data[internal11Ref] = pdf.Dict{
		"Type":     pdf.Name("Pages"),
		"Count":    pdf.Integer(3),
		"Kids":     pdf.Array{refs[7], refs[8], refs[9]},
		"MediaBox": pdf.Name("B"),
		"Rotate":   pdf.Integer(180),
	}

	internal1Ref := pdf.NewReference(104, 0)
	data[internal1Ref] = pdf.Dict{
		"Type":   pdf.Name("Pages"),
		"Count":  pdf.Integer(7),
		"Kids":   pdf.Array{internal10Ref, refs[6], internal11Ref},
		"Rotate": pdf.Integer(90),
	}

	rootRef := pdf.NewReference(105, 0)
	data[rootRef] = pdf.Dict{
		"Type":  pdf.Name("Pages"),
		"Count": pdf.Integer(n),
		"Kids":  pdf.Array{refs[0], internal0Ref, internal1Ref},
	}

	expectedResource := []pdf.Object{
		nil, pdf.Name("Q"), pdf.Name("P"), pdf.Name("P"), nil, nil, nil, nil, nil, nil,
	}
	expectedRotate := []pdf.Object{
		nil, nil, nil, nil, pdf.Integer(90), pdf.Integer(90), pdf.Integer(90), pdf.Integer(180), pdf.Integer(180), pdf.Integer(180),
	}

	var gotReferences []pdf.Reference
	var gotResources []pdf.Object
	var gotRotate []pdf.Object
	for ref, dict := range pagetree.NewIterator(data, rootRef).All() {
		gotReferences = append(gotReferences, ref)
		gotResources = append(gotResources, dict["Resources"])
		gotRotate = append(gotRotate, dict["Rotate"])
	}

	if d := cmp.Diff(refs, gotReferences); d != "" {
		t.Fatalf("unexpected references (-want +got):\n%s", d)
	}
	if d := cmp.Diff(expectedResource, gotResources); d != "" {
		t.Fatalf("unexpected resources (-want +got):\n%s", d)
	}
	if d := cmp.Diff(expectedRotate, gotRotate); d != "" {
		t.Fatalf("unexpected rotations (-want +got):\n%s", d)
	}
}

func TestFindPagesFlat(t *testing.T) {
	data := memGetter{}
	var kids pdf.Array
	refs := make([]pdf.Reference, 5)
	for i := range refs {
		refs[i] = pdf.NewReference(uint32(i+1), 0)
		data[refs[i]] = pdf.Dict{"Type": pdf.Name("Page")}
		kids = append(kids, refs[i])
	}
	root := pdf.NewReference(100, 0)
	data[root] = pdf.Dict{"Type": pdf.Name("Pages"), "Kids": kids, "Count": pdf.Integer(5)}

	got, err := pagetree.FindPages(data, root)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(refs, got); d != "" {
		t.Fatalf("unexpected references (-want +got):\n%s", d)
	}
}

func TestCycleIsNotInfinite(t *testing.T) {
	data := memGetter{}
	root := pdf.NewReference(1, 0)
	// a /Pages node that (incorrectly) lists itself as a Kid.
	data[root] = pdf.Dict{
		"Type": pdf.Name("Pages"),
		"Kids": pdf.Array{root},
	}

	got, err := pagetree.FindPages(data, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no leaves from a self-referential tree, got %v", got)
	}
}

// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package pdf

import "testing"

func TestExtractCatalog(t *testing.T) {
	dict := Dict{
		"Type":     Name("Catalog"),
		"Pages":    NewReference(2, 0),
		"PageMode": Name("UseOutlines"),
		"Lang":     String("en-US"),
	}
	cat, err := ExtractCatalog(nil, dict)
	if err != nil {
		t.Fatalf("ExtractCatalog: %v", err)
	}
	if cat.Pages != NewReference(2, 0) {
		t.Errorf("Pages = %v, want 2 0 R", cat.Pages)
	}
	if cat.PageMode != "UseOutlines" {
		t.Errorf("PageMode = %v", cat.PageMode)
	}
	if cat.Lang.String() != "en-US" {
		t.Errorf("Lang = %v, want en-US", cat.Lang)
	}
}

func TestExtractCatalogMissingPages(t *testing.T) {
	_, err := ExtractCatalog(nil, Dict{"Type": Name("Catalog")})
	if err == nil {
		t.Fatal("ExtractCatalog without /Pages succeeded, want error")
	}
}

func TestExtractCatalogWrongType(t *testing.T) {
	_, err := ExtractCatalog(nil, Dict{"Type": Name("Page"), "Pages": NewReference(2, 0)})
	if err == nil {
		t.Fatal("ExtractCatalog of a /Type /Page dict succeeded, want error")
	}
}

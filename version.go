// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package pdf

import "fmt"

// Version identifies a PDF version as declared in the file header
// ("%PDF-x.y") or, if later, in the document catalog's Version entry.
type Version int

const (
	_ Version = iota
	V1_0
	V1_1
	V1_2
	V1_3
	V1_4
	V1_5
	V1_6
	V1_7
	V2_0
)

func (v Version) String() string {
	switch v {
	case V1_0:
		return "1.0"
	case V1_1:
		return "1.1"
	case V1_2:
		return "1.2"
	case V1_3:
		return "1.3"
	case V1_4:
		return "1.4"
	case V1_5:
		return "1.5"
	case V1_6:
		return "1.6"
	case V1_7:
		return "1.7"
	case V2_0:
		return "2.0"
	default:
		return fmt.Sprintf("invalid(%d)", int(v))
	}
}

// ParseVersion parses a PDF version string of the form "x.y", as found
// after the "%PDF-" magic in a file header.
func ParseVersion(s string) (Version, error) {
	switch s {
	case "1.0":
		return V1_0, nil
	case "1.1":
		return V1_1, nil
	case "1.2":
		return V1_2, nil
	case "1.3":
		return V1_3, nil
	case "1.4":
		return V1_4, nil
	case "1.5":
		return V1_5, nil
	case "1.6":
		return V1_6, nil
	case "1.7":
		return V1_7, nil
	case "2.0":
		return V2_0, nil
	default:
		return 0, &MalformedFileError{Err: fmt.Errorf("unsupported PDF version %q", s)}
	}
}

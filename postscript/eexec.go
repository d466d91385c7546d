// Copyright 2024 The pdfcore authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package postscript

// Decrypt reverses the Type 1 font eexec feedback cipher (Adobe Type 1
// Font Format, section 7.3) with the given 16-bit key, discarding the
// first skip bytes of decrypted "random" lead-in. Use key 55665 for the
// private dictionary (eexec) and 4330 for individual CharStrings, each
// with skip set to lenIV (default 4).
func Decrypt(cipher []byte, key uint16, skip int) []byte {
	const c1, c2 = 52845, 22719
	r := key
	out := make([]byte, 0, len(cipher))
	for _, c := range cipher {
		p := c ^ byte(r>>8)
		r = (uint16(c)+r)*c1 + c2
		out = append(out, p)
	}
	if skip < 0 || skip > len(out) {
		skip = 0
	}
	return out[skip:]
}

package pdf

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"testing"
)

// algorithm3ComputeO mirrors ISO 32000-1 Algorithm 3 (computing the O
// entry from the two passwords), which this engine has no need to
// produce itself since it never writes encrypted documents. It exists
// here purely to build self-consistent fixtures for the decrypt-side
// algorithms under test.
func algorithm3ComputeO(ownerPwd, userPwd string, R, keyBytes int) []byte {
	padOwner, err := padPasswd(ownerPwd)
	if err != nil {
		panic(err)
	}
	padUser, err := padPasswd(userPwd)
	if err != nil {
		panic(err)
	}

	h := md5.New()
	h.Write(padOwner)
	key := h.Sum(nil)
	if R >= 3 {
		for i := 0; i < 50; i++ {
			h.Reset()
			h.Write(key[:keyBytes])
			key = h.Sum(key[:0])
		}
	}
	key = key[:keyBytes]

	O := make([]byte, 32)
	copy(O, padUser)
	if R == 2 {
		c, _ := rc4.NewCipher(key)
		c.XORKeyStream(O, O)
	} else {
		tmp := make([]byte, len(key))
		for i := 0; i < 20; i++ {
			for j := range tmp {
				tmp[j] = key[j] ^ byte(i)
			}
			c, _ := rc4.NewCipher(tmp)
			c.XORKeyStream(O, O)
		}
	}
	return O
}

func newFixtureSecHandler(t *testing.T, R int, userPwd, ownerPwd string, P uint32) *stdSecHandler {
	t.Helper()
	const keyBytes = 16
	id := []byte("0123456789ABCDEF")

	sec := &stdSecHandler{
		R:        R,
		ID:       id,
		P:        P,
		keyBytes: keyBytes,
		O:        algorithm3ComputeO(ownerPwd, userPwd, R, keyBytes),
	}

	padUser, err := padPasswd(userPwd)
	if err != nil {
		t.Fatal(err)
	}
	key := sec.computeFileEncyptionKey(padUser)
	sec.U = sec.computeU(key)
	return sec
}

func TestAuthenticateUserR4(t *testing.T) {
	sec := newFixtureSecHandler(t, 4, "user", "owner", 0xFFFFFFFC)

	padUser, err := padPasswd("user")
	if err != nil {
		t.Fatal(err)
	}
	if err := sec.authenticateUser(padUser); err != nil {
		t.Fatalf("correct user password rejected: %v", err)
	}
	if sec.key == nil {
		t.Error("key not set after successful authentication")
	}

	sec.key = nil
	padWrong, _ := padPasswd("wrong")
	if err := sec.authenticateUser(padWrong); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestAuthenticateOwnerR4(t *testing.T) {
	sec := newFixtureSecHandler(t, 4, "user", "owner", 0xFFFFFFFC)

	padOwner, err := padPasswd("owner")
	if err != nil {
		t.Fatal(err)
	}
	if err := sec.authenticateOwner(padOwner); err != nil {
		t.Fatalf("correct owner password rejected: %v", err)
	}
	if !sec.ownerAuthenticated {
		t.Error("ownerAuthenticated not set")
	}

	sec.key = nil
	sec.ownerAuthenticated = false
	padUser, _ := padPasswd("user")
	if err := sec.authenticateOwner(padUser); err == nil {
		t.Error("user password wrongly accepted as owner password")
	}
	if sec.ownerAuthenticated {
		t.Error("ownerAuthenticated wrongly set")
	}
}

func TestAuthenticateUserR2(t *testing.T) {
	sec := newFixtureSecHandler(t, 2, "hello", "world", 0xFFFFFFC0)

	padUser, err := padPasswd("hello")
	if err != nil {
		t.Fatal(err)
	}
	if err := sec.authenticateUser(padUser); err != nil {
		t.Fatalf("correct user password rejected: %v", err)
	}
}

func buildR6Fixture(t *testing.T, userPwd, ownerPwd string, P uint32) *stdSecHandler {
	t.Helper()

	utf8User, err := utf8Passwd(userPwd)
	if err != nil {
		t.Fatal(err)
	}
	utf8Owner, err := utf8Passwd(ownerPwd)
	if err != nil {
		t.Fatal(err)
	}

	fileKey := bytes.Repeat([]byte{0x42}, 32)

	userValSalt := bytes.Repeat([]byte{0x01}, 8)
	userKeySalt := bytes.Repeat([]byte{0x02}, 8)
	userHash := slowHash(utf8User, userValSalt, nil)
	U := append(append(append([]byte{}, userHash...), userValSalt...), userKeySalt...)

	userIK := slowHash(utf8User, userKeySalt, nil)
	c, err := aes.NewCipher(userIK)
	if err != nil {
		t.Fatal(err)
	}
	UE := make([]byte, 32)
	cipher.NewCBCEncrypter(c, zero16).CryptBlocks(UE, fileKey)

	ownerValSalt := bytes.Repeat([]byte{0x03}, 8)
	ownerKeySalt := bytes.Repeat([]byte{0x04}, 8)
	ownerHash := slowHash(utf8Owner, ownerValSalt, U)
	O := append(append(append([]byte{}, ownerHash...), ownerValSalt...), ownerKeySalt...)

	ownerIK := slowHash(utf8Owner, ownerKeySalt, U)
	c, err = aes.NewCipher(ownerIK)
	if err != nil {
		t.Fatal(err)
	}
	OE := make([]byte, 32)
	cipher.NewCBCEncrypter(c, zero16).CryptBlocks(OE, fileKey)

	plainPerms := make([]byte, 16)
	plainPerms[0] = byte(P)
	plainPerms[1] = byte(P >> 8)
	plainPerms[2] = byte(P >> 16)
	plainPerms[3] = byte(P >> 24)
	plainPerms[4], plainPerms[5], plainPerms[6], plainPerms[7] = 0xFF, 0xFF, 0xFF, 0xFF
	plainPerms[8] = 'T'
	plainPerms[9], plainPerms[10], plainPerms[11] = 'a', 'd', 'b'

	c, err = aes.NewCipher(fileKey)
	if err != nil {
		t.Fatal(err)
	}
	Perms := make([]byte, 16)
	c.Encrypt(Perms, plainPerms)

	return &stdSecHandler{
		R:     6,
		ID:    []byte("0123456789ABCDEF"),
		P:     P,
		U:     U,
		UE:    UE,
		O:     O,
		OE:    OE,
		Perms: Perms,
	}
}

func TestAuthenticateUserR6(t *testing.T) {
	sec := buildR6Fixture(t, "user", "owner", 0xFFFFFFFC)

	utf8User, err := utf8Passwd("user")
	if err != nil {
		t.Fatal(err)
	}
	if err := sec.authenticateUser6(utf8User); err != nil {
		t.Fatalf("correct user password rejected: %v", err)
	}
	want := bytes.Repeat([]byte{0x42}, 32)
	if !bytes.Equal(sec.key, want) {
		t.Errorf("wrong file key: %x", sec.key)
	}

	sec.key = nil
	utf8Wrong, _ := utf8Passwd("wrong")
	if err := sec.authenticateUser6(utf8Wrong); err == nil {
		t.Error("wrong password accepted")
	}
}

func TestAuthenticateOwnerR6(t *testing.T) {
	sec := buildR6Fixture(t, "user", "owner", 0xFFFFFFFC)

	utf8Owner, err := utf8Passwd("owner")
	if err != nil {
		t.Fatal(err)
	}
	if err := sec.authenticateOwner6(utf8Owner); err != nil {
		t.Fatalf("correct owner password rejected: %v", err)
	}
	if !sec.ownerAuthenticated {
		t.Error("ownerAuthenticated not set")
	}
}

func TestDecryptBytesRoundTrip(t *testing.T) {
	ref := NewReference(1, 0)
	for _, cipherKind := range []cipherType{cipherRC4, cipherAES} {
		sec := &stdSecHandler{
			R:        4,
			keyBytes: 16,
			key:      bytes.Repeat([]byte{0x11}, 16),
		}
		enc := &encryptInfo{sec: sec, strF: &cryptFilter{Cipher: cipherKind, Length: 128}}

		plain := []byte("the quick brown fox")
		key, err := sec.KeyForRef(enc.strF, ref)
		if err != nil {
			t.Fatal(err)
		}

		var ciphertext []byte
		switch cipherKind {
		case cipherRC4:
			c, _ := rc4.NewCipher(key)
			ciphertext = make([]byte, len(plain))
			c.XORKeyStream(ciphertext, plain)
		case cipherAES:
			padded := append([]byte{}, plain...)
			nPad := 16 - len(padded)%16
			for i := 0; i < nPad; i++ {
				padded = append(padded, byte(nPad))
			}
			iv := bytes.Repeat([]byte{0x22}, 16)
			c, _ := aes.NewCipher(key)
			ciphertext = make([]byte, 16+len(padded))
			copy(ciphertext, iv)
			cipher.NewCBCEncrypter(c, iv).CryptBlocks(ciphertext[16:], padded)
		}

		got, err := enc.DecryptBytes(ref, ciphertext)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(plain) {
			t.Errorf("%v: got %q, want %q", cipherKind, got, plain)
		}
	}
}

func TestStdSecPToPerm(t *testing.T) {
	var P uint32 = 0xFFFFF0C0 // bits 1-6 and 9-12 clear: no print, no modify, no copy, no annotate
	perm := stdSecPToPerm(4, P)
	if perm&PermPrint != 0 || perm&PermModify != 0 || perm&PermCopy != 0 {
		t.Errorf("unexpected permissions granted: %v", perm)
	}

	P = 0xFFFFFFFF
	perm = stdSecPToPerm(4, P)
	if perm&PermPrint == 0 || perm&PermModify == 0 || perm&PermCopy == 0 {
		t.Errorf("expected permissions missing: %v", perm)
	}
}

func TestPermCanR2(t *testing.T) {
	if !PermAll.canR2() {
		t.Error("PermAll should be representable in R2")
	}
	bad := PermPrintDegraded // implies PermPrint should also be set for R2 sanity
	if bad.canR2() {
		t.Error("PermPrintDegraded without PermPrint should not be representable in R2")
	}
}

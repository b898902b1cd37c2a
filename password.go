package prpass

import (
	"encoding/hex"
	"strings"
)

// CharPool is the ordered alphabet service passwords are drawn from. Changing the order
// or content changes every derived password.
const CharPool = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"~!@#$%^&*()_-=+{}[]|;:'<>?/"

// publicBytes is the fixed secret input of every master-key job. It is shared by all
// installations and must never change.
var publicBytes = mustDecodeHex(
	"6a4f329a3fdd67573e356efcf4c66d8b" +
		"c410e726413420ffd29889d253719514" +
		"58830370945cc29796bd0abc69064285" +
		"43244c35e8202f2290753e72670df5f5",
)

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// EncodePassword maps each byte of raw onto CharPool by index modulo the pool size.
// Pair it with Profile.PasswordJob when the job runs outside the profile.
func EncodePassword(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		sb.WriteByte(CharPool[int(b)%len(CharPool)])
	}
	return sb.String()
}

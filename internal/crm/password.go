package crm

import (
	"crypto/md5"
	"encoding/hex"
)

// HashPassword returns the md5 hex digest the SugarCRM login call expects.
func HashPassword(plain string) string {
	sum := md5.Sum([]byte(plain))
	return hex.EncodeToString(sum[:])
}

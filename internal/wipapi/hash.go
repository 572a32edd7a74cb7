package wipapi

import (
	"crypto/md5"
	"encoding/hex"
)

// HashPassword — MD5 в нижнем hex, как ждёт сервер в password_usl.
// Другой алгоритм сервер не отличит от неверного пароля.
func HashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

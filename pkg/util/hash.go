package util

import "strconv"

// EncodeHash32 hashes a string to a 32-bit signed integer rendered as text
// Matches the rolling hash used by the web client so placeholder layouts agree
// EncodeHash32 将字符串哈希为 32 位有符号整数的文本形式
// 与 Web 客户端使用的滚动哈希一致，保证占位布局一致
func EncodeHash32(content string) string {
	var hash int32 = 0
	// 将 string 转为 UTF-16 rune 数组以匹配 JS 的处理方式
	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		char := int32(runes[i])
		hash = (hash << 5) - hash + char
		// Go 的 int32 会自动溢出处理，无需额外操作
	}
	return strconv.Itoa(int(hash))
}

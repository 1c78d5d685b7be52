package dataset

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// 文档注释：文本解码（UTF-8 优先，失败回退 ISO-8859-1）
// 背景：MINSA 导出的 IPRESS 与 IGN 的 dbf 属性表常见 latin1 编码。
// 约束：latin1 为单字节全映射，回退解码本身不会失败；是否可用由上层的结构解析判定。
func decodeText(b []byte) (string, string, error) {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return string(b), EncodingUTF8, nil
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", "", err
	}
	return string(out), EncodingLatin1, nil
}

// dbf 字段值：去除补齐空格与 NUL 后解码
func decodeAttr(s string) string {
	s = strings.TrimRight(s, "\x00")
	s = strings.TrimSpace(s)
	if utf8.ValidString(s) {
		return s
	}
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

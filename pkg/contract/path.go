package contract

import (
	"path"
	"strings"
)

// NormalizeFileID 规范化路径，统一为跨平台稳定的 FileID。
// 规则：
// - 使用正斜杠分隔符
// - 清理多余分隔符与路径片段（.、..）
// - 保留相对/绝对语义，不做隐式绝对化
func NormalizeFileID(p string) FileID {
	return FileID(path.Clean(strings.ReplaceAll(p, "\\", "/")))
}

// compressionExts: 传输层压缩后缀，判定逻辑扩展名时剥离。
var compressionExts = map[string]struct{}{".gz": {}, ".zst": {}}

// LogicalExt 返回去掉压缩后缀后的小写扩展名。
// 例如 "a/b.TXT.gz" → ".txt"，"c.zst" → ""。
func LogicalExt(id FileID) string {
	s := strings.ToLower(string(id))
	if _, ok := compressionExts[path.Ext(s)]; ok {
		s = strings.TrimSuffix(s, path.Ext(s))
	}
	return path.Ext(s)
}

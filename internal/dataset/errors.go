package dataset

import "fmt"

// UnreadableSourceError：数据集在所有支持的编码/格式下都无法解析；对该数据集是致命错误
type UnreadableSourceError struct {
	Path string
	Err  error
}

func (e *UnreadableSourceError) Error() string {
	return fmt.Sprintf("unreadable source %s: %v", e.Path, e.Err)
}

func (e *UnreadableSourceError) Unwrap() error { return e.Err }

// MissingCRSError：矢量数据集缺少或无法识别坐标系元数据
// 约束：不做默认 CRS 假设，否则下游所有空间判定都会失真
type MissingCRSError struct {
	Path   string
	Reason string
}

func (e *MissingCRSError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing crs for %s", e.Path)
	}
	return fmt.Sprintf("missing crs for %s: %s", e.Path, e.Reason)
}

func unreadable(path string, format string, args ...any) error {
	return &UnreadableSourceError{Path: path, Err: fmt.Errorf(format, args...)}
}

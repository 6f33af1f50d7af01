package archive

import (
	"errors"
	"fmt"
	"strings"
)

// Entry 描述归档集合中的一项：ID 是可交给 Opener 的归档标识，
// FirstPath 是打包进该归档的第一个成员路径，为空时不参与索引匹配。
type Entry struct {
	ID        string `json:"id"`
	FirstPath string `json:"first_path,omitempty"`
}

// Set 是按打包顺序排列的归档集合。
//
// 将所有归档的成员路径按 Set 顺序拼接后，必须得到一个全序：深度优先、
// 目录自身的文件先于子目录、大小写敏感且大写在前。MapPathToArchive 依赖该假设。
// Set 构造后不可变，可在请求间并发共享。
type Set struct {
	entries []Entry
}

// NewSet 校验并复制 entries。
func NewSet(entries []Entry) (*Set, error) {
	if len(entries) == 0 {
		return nil, errors.New("archive set is empty")
	}
	seen := make(map[string]struct{}, len(entries))
	copied := make([]Entry, len(entries))
	for i, entry := range entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("archive #%d: id required", i)
		}
		if _, ok := seen[entry.ID]; ok {
			return nil, fmt.Errorf("archive %s listed twice", entry.ID)
		}
		seen[entry.ID] = struct{}{}
		copied[i] = entry
	}
	return &Set{entries: copied}, nil
}

// Entries 返回集合的副本。
func (s *Set) Entries() []Entry {
	if s == nil {
		return nil
	}
	return append([]Entry(nil), s.entries...)
}

// Len returns the number of archives in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// MapPathToArchive 从最后一个归档向前扫描，返回第一个 FirstPath 排在 path
// 之前（或相等）的归档。没有任何归档带排序键、或都排在 path 之后时返回 false，
// 调用方应从集合第一个归档开始查找。
func (s *Set) MapPathToArchive(path string) (string, bool) {
	if s == nil {
		return "", false
	}
	for i := len(s.entries) - 1; i >= 0; i-- {
		entry := s.entries[i]
		if entry.FirstPath == "" {
			continue
		}
		if ComparePaths(entry.FirstPath, path) >= 0 {
			return entry.ID, true
		}
	}
	return "", false
}

// ComparePaths 比较两个归档成员路径在打包顺序中的先后。
// 返回正数表示 a 在前，负数表示 b 在前，0 表示相同。
//
// 同层级的分段比较是反向的：字典序较小的分段返回正数（排在前面）。
// 分段数不同且分歧发生在任一路径的最后一段时，分段较少的一方（文件）在前，
// 因为目录自身的文件先于其子目录中的文件被打包。
func ComparePaths(a, b string) int {
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")

	i := 0
	for i < len(as) && i < len(bs) && as[i] == bs[i] {
		i++
	}

	if len(as) == len(bs) {
		if i == len(as) {
			return 0
		}
		return compareSegments(as[i], bs[i])
	}

	// i 到达较短路径末尾说明其为另一方的前缀，同样按文件在前处理。
	if i >= len(as) || i >= len(bs) || i+1 == len(as) || i+1 == len(bs) {
		return len(bs) - len(as)
	}
	return compareSegments(as[i], bs[i])
}

// compareSegments 反向比较：字典序较小者返回 1。
func compareSegments(a, b string) int {
	switch {
	case a < b:
		return 1
	case a > b:
		return -1
	default:
		return 0
	}
}

package system

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const DefaultStatPath = "/proc/stat"

// StatSource yields one raw /proc/stat dump per call.
type StatSource interface {
	ReadStat(ctx context.Context) (string, error)
}

type FileStatSource struct {
	Path string
}

func NewFileStatSource(path string) *FileStatSource {
	if strings.TrimSpace(path) == "" {
		path = DefaultStatPath
	}
	return &FileStatSource{Path: path}
}

func (s *FileStatSource) ReadStat(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.Path, err)
	}
	return string(raw), nil
}

// StaticStatSource replays fixed dumps in order and then repeats the last one.
type StaticStatSource struct {
	dumps []string
	next  int
}

func NewStaticStatSource(dumps ...string) *StaticStatSource {
	return &StaticStatSource{dumps: dumps}
}

func (s *StaticStatSource) ReadStat(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.dumps) == 0 {
		return "", fmt.Errorf("static stat source is empty")
	}
	i := s.next
	if i >= len(s.dumps) {
		i = len(s.dumps) - 1
	}
	s.next++
	return s.dumps[i], nil
}

package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir 失败：%v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("临时文件未清理：%q", e.Name())
		}
	}
}

func TestWriteFileAtomic_CreatesParentAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "report.json")

	if err := WriteFileAtomic(path, []byte("one")); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if err := WriteFileAtomic(path, []byte("two")); err != nil {
		t.Fatalf("覆盖写入不期望错误：%v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != "two" {
		t.Fatalf("期望 two，实际 %q", string(b))
	}
	assertNoTemp(t, filepath.Dir(path))
}

func TestWriteFileAtomic_RenameFailKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("准备文件失败：%v", err)
	}

	old := renameFunc
	renameFunc = func(_, _ string) error { return os.ErrPermission }
	defer func() { renameFunc = old }()

	err := WriteFileAtomic(path, []byte("new"))
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("期望 ErrPermission，实际 %v", err)
	}

	b, _ := os.ReadFile(path)
	if string(b) != "old" {
		t.Fatalf("期望原内容不变，实际 %q", string(b))
	}
	assertNoTemp(t, dir)
}

func TestWriteFileAtomic_TargetIsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}

	err := WriteFileAtomic(path, []byte("x"))
	var nr *NotRegularError
	if !errors.As(err, &nr) {
		t.Fatalf("期望 NotRegularError，实际：%T %v", err, err)
	}
	if nr.Got != "dir" {
		t.Fatalf("期望 Got=dir，实际 %q", nr.Got)
	}
}

package fsx

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// 测试里替换以模拟 rename 失败。
var renameFunc = os.Rename

// NotRegularError 表示目标路径已存在但不是普通文件（例如目录）。
type NotRegularError struct {
	Path string
	Got  string
}

func (e *NotRegularError) Error() string {
	return fmt.Sprintf("输出路径不是普通文件：%q（实际 %s）", e.Path, e.Got)
}

// WriteFileAtomic 原子写入 path（同目录临时文件 + rename），已存在的普通文件会被替换。
//
// 写入失败时不会留下临时文件，也不会改动原有内容。
func WriteFileAtomic(path string, data []byte) error {
	path = filepath.Clean(path)
	if fi, err := os.Lstat(path); err == nil {
		if !fi.Mode().IsRegular() {
			got := "dir"
			if !fi.IsDir() {
				got = fi.Mode().Type().String()
			}
			return &NotRegularError{Path: path, Got: got}
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := renameFunc(tmpName, path); err != nil {
		return err
	}

	// 目录 fsync：best-effort。
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

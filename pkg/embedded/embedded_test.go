package embedded

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func reset() {
	dataFS = nil
	initialized = false
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/catalog.yaml": {Data: []byte("locations: []\n")},
	}
}

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	reset()
	defer reset()

	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	Init(testFS())

	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}
}

// TestNotInitialized 测试未初始化时的访问
func TestNotInitialized(t *testing.T) {
	reset()

	if _, err := Open("data/catalog.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Open(): expected ErrNotInitialized, got %v", err)
	}
	if _, err := ReadFile("data/catalog.yaml"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("ReadFile(): expected ErrNotInitialized, got %v", err)
	}
	if Exists("data/catalog.yaml") {
		t.Error("Expected Exists() to return false before Init()")
	}
}

// TestReadFile 测试读取与路径标准化
func TestReadFile(t *testing.T) {
	reset()
	defer reset()
	Init(testFS())

	for _, path := range []string{"data/catalog.yaml", "./data/catalog.yaml"} {
		data, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile(%q) failed: %v", path, err)
		}
		if !strings.Contains(string(data), "locations") {
			t.Errorf("ReadFile(%q): unexpected content %q", path, data)
		}
	}

	if data, err := Catalog(); err != nil || len(data) == 0 {
		t.Errorf("Catalog() = %q, %v", data, err)
	}
}

// TestInvalidPrefix 测试非法路径前缀
func TestInvalidPrefix(t *testing.T) {
	reset()
	defer reset()
	Init(testFS())

	_, err := ReadFile("assets/manoir.jpg")
	if err == nil {
		t.Fatal("Expected error for path outside data/")
	}
	if !strings.Contains(err.Error(), "unknown resource path prefix") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

// TestExists 测试文件存在检查
func TestExists(t *testing.T) {
	reset()
	defer reset()
	Init(testFS())

	if !Exists("data/catalog.yaml") {
		t.Error("Expected data/catalog.yaml to exist")
	}
	if Exists("data/missing.yaml") {
		t.Error("Expected data/missing.yaml to be missing")
	}
}

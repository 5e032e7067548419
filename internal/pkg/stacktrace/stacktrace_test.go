package stacktrace

import "testing"

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/herald/internal/pkg/eventbus.(*Bus).run.func1()
	/src/herald/internal/pkg/eventbus/eventbus.go:120 +0x3a
main.main()
	/src/herald/main.go:10 +0x1
`)

	// Act
	paths := InternalPaths(stack)

	// Assert
	if len(paths) != 1 || paths[0] != "internal/pkg/eventbus/eventbus.go:120" {
		t.Fatalf("unexpected paths %v", paths)
	}
}

package main

import (
	"strings"
	"testing"
)

func TestGenerateEmitsPointerPerName(t *testing.T) {
	var out strings.Builder
	in := "# tasks\ntask1\n\n  task2  \ntaskExit\n"
	if err := generate(strings.NewReader(in), &out, ".rodata.task_ptrs"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, ".section .rodata.task_ptrs,\"a\",@progbits") {
		t.Errorf("missing section directive:\n%s", got)
	}
	for _, name := range []string{"task1", "task2", "taskExit"} {
		want := "\n.global " + name + "Ptr\n" + name + "Ptr:\n\t.dword " + name + "\n"
		if !strings.Contains(got, want) {
			t.Errorf("no pointer for %s in:\n%s", name, got)
		}
	}
	if strings.Contains(got, "tasksPtr") {
		t.Errorf("comment line was treated as a name")
	}
}

func TestGenerateRejectsBadNames(t *testing.T) {
	var out strings.Builder
	err := generate(strings.NewReader("task1\nmain.task2\n"), &out, ".rodata")
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected an error on line 2, got %v", err)
	}
	for _, s := range []string{"", "9lives", "a-b"} {
		if isSymbol(s) {
			t.Errorf("%q should not be a symbol", s)
		}
	}
}

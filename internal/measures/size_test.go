package measures

import "testing"

func TestCompute(t *testing.T) {
	src := "# header\ndefmodule Foo do\n\n  # inline\n  def bar, do: :ok # trailing\nend\n"
	got := Compute(src, "#")
	want := Size{Lines: 7, NCLoc: 3, CommentLines: 2}
	if got != want {
		t.Fatalf("Compute = %+v, want %+v", got, want)
	}
}

func TestComputeEmpty(t *testing.T) {
	got := Compute("", "#")
	if got.NCLoc != 0 || got.CommentLines != 0 {
		t.Fatalf("Compute(\"\") = %+v", got)
	}
	if got.Lines != 1 {
		t.Fatalf("Lines = %d, want 1", got.Lines)
	}
}

func TestComputeCRLF(t *testing.T) {
	got := Compute("a\r\n\r\n# c\r\n", "#")
	if got.NCLoc != 1 || got.CommentLines != 1 {
		t.Fatalf("Compute = %+v", got)
	}
}

func TestComputeNoPrefix(t *testing.T) {
	got := Compute("# x\ny\n", "")
	if got.NCLoc != 2 || got.CommentLines != 0 {
		t.Fatalf("Compute = %+v", got)
	}
}

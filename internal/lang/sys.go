package lang

import (
	"fmt"
	"io"
)

// SysBackend is the interpreter's window onto the host system.
type SysBackend interface {
	Print(s string) error
	ReadFile(path string) ([]byte, error)
}

// SafeSys writes printed output to w and refuses file system access.
type SafeSys struct {
	w io.Writer
}

func NewSafeSys(w io.Writer) *SafeSys {
	return &SafeSys{w: w}
}

func (s *SafeSys) Print(str string) error {
	_, err := io.WriteString(s.w, str)
	return err
}

func (s *SafeSys) ReadFile(path string) ([]byte, error) {
	return nil, fmt.Errorf("reading %s: file system access is %w", path, ErrSafeMode)
}

func sysPrint(i *Interp) error {
	v, err := i.pop("&p")
	if err != nil {
		return err
	}
	s := v.String()
	if v.kind == CharKind && v.Rank() == 1 {
		s = v.Text()
	}
	return i.sys.Print(s + "\n")
}

func sysReadFile(i *Interp) error {
	v, err := i.pop("&fras")
	if err != nil {
		return err
	}
	if v.kind != CharKind || v.Rank() != 1 {
		return fmt.Errorf("&fras expects a path string, got %s", v)
	}
	data, err := i.sys.ReadFile(v.Text())
	if err != nil {
		return err
	}
	i.push(Chars(string(data)))
	return nil
}

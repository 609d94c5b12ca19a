package browser

import (
	"errors"
	"testing"
)

func testOpener(goos string, calls *[][]string, err error) *Opener {
	return &Opener{goos: goos, run: func(name string, args ...string) error {
		*calls = append(*calls, append([]string{name}, args...))
		return err
	}}
}

func TestOpenRejectsNonHTTP(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://youtube.com/watch?v=xyz", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"", true},
	}

	for _, tt := range tests {
		var calls [][]string
		err := testOpener("linux", &calls, nil).Open(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Open(%q): expected error, got nil", tt.url)
			}
			if len(calls) != 0 {
				t.Errorf("Open(%q): launcher should not run", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("Open(%q): unexpected error %v", tt.url, err)
		}
	}
}

func TestOpenLauncherPerPlatform(t *testing.T) {
	const u = "https://youtube.com/watch?v=xyz"
	tests := []struct {
		goos string
		want []string
	}{
		{"darwin", []string{"open", u}},
		{"linux", []string{"xdg-open", u}},
		{"freebsd", []string{"xdg-open", u}},
		{"windows", []string{"rundll32", "url.dll,FileProtocolHandler", u}},
	}
	for _, tt := range tests {
		var calls [][]string
		if err := testOpener(tt.goos, &calls, nil).Open(u); err != nil {
			t.Fatalf("%s: %v", tt.goos, err)
		}
		if len(calls) != 1 || len(calls[0]) != len(tt.want) {
			t.Fatalf("%s: got calls %v", tt.goos, calls)
		}
		for i := range tt.want {
			if calls[0][i] != tt.want[i] {
				t.Errorf("%s: got %v, want %v", tt.goos, calls[0], tt.want)
			}
		}
	}
}

func TestOpenLauncherFailure(t *testing.T) {
	var calls [][]string
	err := testOpener("linux", &calls, errors.New("not found")).Open("https://a.com")
	if err == nil {
		t.Error("expected launcher error")
	}
}

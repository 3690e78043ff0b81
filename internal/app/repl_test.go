package app

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands the REPL dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) isLoggedIn() bool { return s.loggedIn }

func (s *stubExec) Login(ctx context.Context) error { return s.record("login") }

func (s *stubExec) Signup(ctx context.Context) error { return s.record("signup") }

func (s *stubExec) Google(ctx context.Context) error { return s.record("google") }

func (s *stubExec) Reset(ctx context.Context) error { return s.record("reset") }

func (s *stubExec) Captcha(ctx context.Context) error { return s.record("captcha") }

func (s *stubExec) List(ctx context.Context) error { return s.record("list") }

func (s *stubExec) Add(ctx context.Context) error { return s.record("add") }

func (s *stubExec) Attach(ctx context.Context) error { return s.record("attach") }

func (s *stubExec) Delete(ctx context.Context) error { return s.record("delete") }

func (s *stubExec) Logout(ctx context.Context) error { return s.record("logout") }

func runWith(t *testing.T, exec *stubExec, input string) string {
	t.Helper()
	out := &bytes.Buffer{}
	runREPL(context.Background(), exec, func() string { return "/" },
		bufio.NewReader(strings.NewReader(input)), out)
	return out.String()
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	exec := &stubExec{}
	runWith(t, exec, "captcha\nlogin\nsignup\ngoogle\nreset\nexit\n")
	assert.Equal(t, []string{"captcha", "login", "signup", "google", "reset"}, exec.calls)
}

func TestRunREPL_ShortAliases(t *testing.T) {
	exec := &stubExec{loggedIn: true}
	runWith(t, exec, "l\nd\nquit\n")
	assert.Equal(t, []string{"list", "delete"}, exec.calls)
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	exec := &stubExec{}
	out := runWith(t, exec, "frobnicate\nexit\n")
	assert.Contains(t, out, "Unknown command: frobnicate")
	assert.Empty(t, exec.calls)
}

func TestRunREPL_HelpDependsOnScreen(t *testing.T) {
	out := runWith(t, &stubExec{}, "help\nexit\n")
	assert.Contains(t, out, "login")

	out = runWith(t, &stubExec{loggedIn: true}, "help\nexit\n")
	assert.Contains(t, out, "logout")
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	exec := &stubExec{}
	runWith(t, exec, "login\n")
	assert.Equal(t, []string{"login"}, exec.calls)
}

func TestRunREPL_StopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &stubExec{}
	out := &bytes.Buffer{}
	runREPL(ctx, exec, func() string { return "/" },
		bufio.NewReader(strings.NewReader("login\nexit\n")), out)
	assert.Empty(t, exec.calls)
}

func TestRunREPL_BlankLineIsIgnored(t *testing.T) {
	exec := &stubExec{}
	out := runWith(t, exec, "\n   \nexit\n")
	assert.NotContains(t, out, "Unknown command")
	assert.Empty(t, exec.calls)
}

package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Google(ctx context.Context) error
	Reset(ctx context.Context) error
	Captcha(ctx context.Context) error
	List(ctx context.Context) error
	Add(ctx context.Context) error
	Attach(ctx context.Context) error
	Delete(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL drives the interactive loop. It reads a line, parses the first
// token as the command, and dispatches to methods on 'a'. Unknown commands
// are reported back. The loop exits on EOF, on "exit"/"quit", or when ctx
// is cancelled.
//
// The available commands depend on the screen:
//
//	Landing (/):
//	  - help                - show available commands
//	  - captcha             - complete the human-verification challenge
//	  - login               - sign in with email and password
//	  - signup              - create an account
//	  - google              - sign in with Google
//	  - reset               - send a password reset email
//	  - exit | quit         - leave the program
//
//	Home (/home):
//	  - help                - show available commands
//	  - (l)ist              - list todos
//	  - add                 - add a todo
//	  - attach              - add a todo with an image
//	  - (d)elete            - delete a todo by id
//	  - logout              - sign out
//	  - exit | quit         - leave the program
//
// Errors returned by command handlers are I/O failures only; handlers
// surface their own outcome messages.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fmt.Fprintf(out, "todo %s > ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: (l)ist, add, attach, (d)elete, logout, exit")
			} else {
				fmt.Fprintln(out, "Available commands: captcha, login, signup, google, reset, exit")
			}

		case "captcha":
			_ = a.Captcha(ctx)

		case "login":
			_ = a.Login(ctx)

		case "signup":
			_ = a.Signup(ctx)

		case "google":
			_ = a.Google(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.Add(ctx)

		case "attach":
			_ = a.Attach(ctx)

		case "d", "delete":
			_ = a.Delete(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}

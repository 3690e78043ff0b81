package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// List refreshes the local collection from the store and prints it.
func (a *App) List(ctx context.Context) error {
	a.clearMessage()

	s := a.sessions.Current()
	if s == nil {
		a.setMessage(msgSessionEnded)
		return nil
	}

	a.refreshTodos(ctx, s.UID)

	todos := a.Todos()
	if len(todos) == 0 {
		fmt.Fprintln(a.out, "No todos yet.")
		return nil
	}
	for _, t := range todos {
		line := fmt.Sprintf("%s  %s", t.ID, t.Text)
		if t.AssetURL != "" {
			line += fmt.Sprintf("  (image: %s)", t.AssetURL)
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// Add creates a todo from an entered line of text. Empty or whitespace-only
// text is simply not submitted.
func (a *App) Add(ctx context.Context) error {
	a.clearMessage()

	text, err := getSimpleText(a.reader, "Add a new todo", a.out)
	if err != nil {
		return err
	}
	return a.addTodo(ctx, text, "")
}

// Attach creates a todo with an image attachment. The upload completes
// before the todo is persisted; if the upload fails, the todo is not
// created at all.
func (a *App) Attach(ctx context.Context) error {
	a.clearMessage()

	text, err := getSimpleText(a.reader, "Add a new todo", a.out)
	if err != nil {
		return err
	}
	path, err := getSimpleText(a.reader, "Path to image file", a.out)
	if err != nil {
		return err
	}
	return a.addTodoWithImage(ctx, text, path)
}

func (a *App) addTodo(ctx context.Context, text, assetURL string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s := a.sessions.Current()
	if s == nil {
		a.setMessage(msgSessionEnded)
		return nil
	}

	if !a.beginOp() {
		a.setMessage(msgBusy)
		return nil
	}
	defer a.endOp()

	todo, err := a.store.Create(ctx, s.UID, text, assetURL)
	if err != nil {
		a.setMessage(MessageFor(err))
		return nil
	}

	a.mu.Lock()
	a.todos = append(a.todos, todo)
	a.mu.Unlock()

	fmt.Fprintf(a.out, "Added %s\n", todo.ID)
	return nil
}

func (a *App) addTodoWithImage(ctx context.Context, text, path string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s := a.sessions.Current()
	if s == nil {
		a.setMessage(msgSessionEnded)
		return nil
	}

	data, err := readFile(path)
	if err != nil {
		a.setMessage(fmt.Sprintf("Could not read %s: %v", path, err))
		return nil
	}

	if !a.beginOp() {
		a.setMessage(msgBusy)
		return nil
	}
	defer a.endOp()

	url, err := a.uploads.Upload(ctx, s.UID, filepath.Base(path), data)
	if err != nil {
		// The create is aborted entirely: no todo may reference an asset
		// that failed to upload.
		a.setMessage(MessageFor(err))
		return nil
	}

	todo, err := a.store.Create(ctx, s.UID, text, url)
	if err != nil {
		a.setMessage(MessageFor(err))
		return nil
	}

	a.mu.Lock()
	a.todos = append(a.todos, todo)
	a.mu.Unlock()

	fmt.Fprintf(a.out, "Added %s\n", todo.ID)
	return nil
}

// Delete removes a todo by id and drops it from the local collection.
func (a *App) Delete(ctx context.Context) error {
	a.clearMessage()

	id, err := getSimpleText(a.reader, "Todo id to delete", a.out)
	if err != nil {
		return err
	}
	if id == "" {
		return nil
	}

	if !a.beginOp() {
		a.setMessage(msgBusy)
		return nil
	}
	defer a.endOp()

	if err := a.store.Delete(ctx, id); err != nil {
		a.setMessage(MessageFor(err))
		return nil
	}

	a.mu.Lock()
	kept := a.todos[:0]
	for _, t := range a.todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	a.todos = kept
	a.mu.Unlock()

	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

// Logout signs out. The local session is cleared regardless of the remote
// outcome; the session-change callback performs the navigation back to the
// landing screen.
func (a *App) Logout(ctx context.Context) error {
	a.clearMessage()

	if err := a.sessions.SignOut(ctx); err != nil {
		a.setMessage(MessageFor(err))
	}
	if err := a.cache.Clear(ctx); err != nil {
		a.logger.Warn(ctx, "could not clear cached state", "err", err)
	}
	return nil
}

package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/toolchat"
)

// Notes returns the manage_notes tool backed by d.Notes.
func Notes(d Deps) toolchat.Tool {
	d = d.withDefaults()
	return &tool{
		name: "manage_notes",
		description: `Manages persistent notes. Use it when the user asks to remember something, read a saved note, delete a note or list all notes.
Actions: 'add', 'list', 'get', 'delete'.`,
		schema: toolchat.ObjectSchema(map[string]*toolchat.Schema{
			"action":  {Type: "string", Enum: []string{"add", "list", "get", "delete"}, Description: "The action to perform"},
			"title":   {Type: "string", Description: "Note title (for add, get, delete)"},
			"content": {Type: "string", Description: "Note content (for add)"},
		}, "action"),
		run: func(ctx context.Context, args json.RawMessage) string {
			return runNotes(ctx, d, args)
		},
	}
}

func runNotes(ctx context.Context, d Deps, args json.RawMessage) string {
	var a struct {
		Action  string `json:"action"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decode(args, &a); err != nil {
		return fail(err.Error(), nil)
	}
	if d.Notes == nil {
		return fail("notes storage is not configured", nil)
	}

	switch a.Action {
	case "add":
		if a.Title == "" || a.Content == "" {
			return fail("title and content are required", nil)
		}
		n := toolchat.Note{Title: a.Title, Content: a.Content, CreatedAt: d.Now()}
		if err := d.Notes.Put(ctx, n); err != nil {
			return fail(err.Error(), nil)
		}
		return ok(fields{"message": fmt.Sprintf("Note %q saved", a.Title)})
	case "list":
		titles, err := d.Notes.List(ctx)
		if err != nil {
			return fail(err.Error(), nil)
		}
		if len(titles) == 0 {
			return ok(fields{"notes": []string{}, "count": 0, "message": "No notes saved"})
		}
		return ok(fields{"notes": titles, "count": len(titles)})
	case "get":
		n, err := d.Notes.Get(ctx, a.Title)
		if err != nil {
			return fail(noteError(a.Title, err), nil)
		}
		return ok(fields{"title": n.Title, "content": n.Content, "created_at": n.CreatedAt.Format(time.RFC3339)})
	case "delete":
		if err := d.Notes.Delete(ctx, a.Title); err != nil {
			return fail(noteError(a.Title, err), nil)
		}
		return ok(fields{"message": fmt.Sprintf("Note %q deleted", a.Title)})
	default:
		return fail(fmt.Sprintf("invalid action %q", a.Action), nil)
	}
}

func noteError(title string, err error) string {
	if errors.Is(err, toolchat.ErrNoteNotFound) {
		return fmt.Sprintf("note %q not found", title)
	}
	return err.Error()
}
